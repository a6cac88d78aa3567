/*
Command redditfs is a read-only FUSE interface to Reddit user profiles.

§ 1. Usage

	redditfs /mnt/reddit

The single argument is the mount point. The filesystem is mounted
read-only and served until the process receives SIGINT or SIGTERM, at
which point it unmounts and exits.

§ 2. Configuration

Redditfs optionally reads $HOME/lib/redditfs/config like so:

	; cat $home/lib/redditfs/config
	{
		"user_agent": "golang:redditfs:v0.1.0 (by /u/example)",
		"base_url": "https://www.reddit.com",
		"batch_size": 10
	}

All keys are optional and the file itself may be absent. Access is
anonymous; no credentials are involved. The batch size bounds how many
recent submissions are loaded per user.

§ 3. File system structure and operation

The root directory starts out empty. Walking into a directory named
after a Reddit user fetches that user's profile (if the user exists) and
adds it to the file system:

	; cat /mnt/reddit/spez/linkkarma
	174239

Each user directory holds six fixed entries: the files linkkarma,
commentkarma, username, created (account creation as epoch seconds) and
summary (a short multi-line profile), plus the directory _posts.

Listing _posts fetches the user's most recent submissions, one read-only
file per submission, named by its position in the listing ("0" is the
most recent).

Profiles and submissions are fetched once and cached for the lifetime of
the mount; nothing is ever refreshed or evicted. Unknown user lookups
are also cached for a while, so shell globbing does not hammer the API.

It is not permitted to create, remove or modify anything.
*/
package main

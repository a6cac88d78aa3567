package main

import (
	"github.com/jacobsa/fuse/fuseops"
	"github.com/pkg/errors"
)

type resourceKind int

const (
	rootKind resourceKind = iota
	userKind
	postsKind
	linkKarmaKind
	commentKarmaKind
	usernameKind
	createdKind
	summaryKind
	postKind
)

// A resource is the semantic identity behind every inode handed to the
// kernel. Inodes are packed as index<<5|tag, so nothing about them needs
// remembering: decoding an inode recovers the resource it was issued for.
//
// The root tag equals fuseops.RootInodeID, so the kernel's very first
// request (attributes of inode 1) decodes with no prior state.
const (
	tagBits = 5
	tagMask = 1<<tagBits - 1

	rootTag         = uint64(fuseops.RootInodeID)
	userTag         = 2
	postsTag        = 3
	linkKarmaTag    = 4
	commentKarmaTag = 5
	usernameTag     = 6
	createdTag      = 7
	summaryTag      = 8
	postTag         = 9
)

// For post resources, the index bits further split into a user index and
// the post's position within that user's listing. Listings are capped at
// well under 2^postSeqBits entries.
const (
	postSeqBits = 16
	postSeqMask = 1<<postSeqBits - 1
)

// errInvalidInode marks an inode this filesystem never issued. It can
// only arise from kernel corruption or a bug on our side, never from
// anything a client does, so it is logged loudly and answered with EIO
// instead of tearing the mount down.
var errInvalidInode = errors.New("inode does not decode to a known resource")

type resource struct {
	kind resourceKind
	user int // user registry index; zero and unused for rootKind
	post int // position in the user's post listing; postKind only
}

func (r resource) inode() fuseops.InodeID {
	var tag, index uint64
	switch r.kind {
	case rootKind:
		tag = rootTag
	case userKind:
		tag, index = userTag, uint64(r.user)
	case postsKind:
		tag, index = postsTag, uint64(r.user)
	case linkKarmaKind:
		tag, index = linkKarmaTag, uint64(r.user)
	case commentKarmaKind:
		tag, index = commentKarmaTag, uint64(r.user)
	case usernameKind:
		tag, index = usernameTag, uint64(r.user)
	case createdKind:
		tag, index = createdTag, uint64(r.user)
	case summaryKind:
		tag, index = summaryTag, uint64(r.user)
	case postKind:
		tag = postTag
		index = uint64(r.user)<<postSeqBits | uint64(r.post)
	}
	return fuseops.InodeID(index<<tagBits | tag)
}

func resourceFromInode(inode fuseops.InodeID) (resource, error) {
	index := uint64(inode) >> tagBits
	switch uint64(inode) & tagMask {
	case rootTag:
		if index != 0 {
			break
		}
		return resource{kind: rootKind}, nil
	case userTag:
		return resource{kind: userKind, user: int(index)}, nil
	case postsTag:
		return resource{kind: postsKind, user: int(index)}, nil
	case linkKarmaTag:
		return resource{kind: linkKarmaKind, user: int(index)}, nil
	case commentKarmaTag:
		return resource{kind: commentKarmaKind, user: int(index)}, nil
	case usernameTag:
		return resource{kind: usernameKind, user: int(index)}, nil
	case createdTag:
		return resource{kind: createdKind, user: int(index)}, nil
	case summaryTag:
		return resource{kind: summaryKind, user: int(index)}, nil
	case postTag:
		return resource{
			kind: postKind,
			user: int(index >> postSeqBits),
			post: int(index & postSeqMask),
		}, nil
	}
	return resource{}, errors.Wrapf(errInvalidInode, "inode %d", inode)
}

func (r resource) isDir() bool {
	switch r.kind {
	case rootKind, userKind, postsKind:
		return true
	}
	return false
}

package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"
	"github.com/pkg/errors"
)

// The fixed entries of every user directory, in listing order.
var userEntryNames = []string{
	"linkkarma",
	"commentkarma",
	"username",
	"created",
	"summary",
	"_posts",
}

var userEntryKinds = map[string]resourceKind{
	"linkkarma":    linkKarmaKind,
	"commentkarma": commentKarmaKind,
	"username":     usernameKind,
	"created":      createdKind,
	"summary":      summaryKind,
	"_posts":       postsKind,
}

// userFS answers the kernel's callbacks. Each callback decodes its inode
// back into a resource, resolves any data it needs through the registry
// and post cache, and replies. FUSE dispatches ops on independent
// goroutines, so one mutex guards both caches; it spans the remote fetch
// because the index assignment must be atomic with insertion. That
// serializes first-time lookups of different users, which is fine: there
// is one fetch per distinct user, not per request.
type userFS struct {
	fuseutil.NotImplementedFileSystem

	clock timeutil.Clock
	uid   uint32
	gid   uint32

	mu    sync.Mutex
	users *userRegistry
	posts *postCache
}

func newUserFS(api redditAPI, batchSize int, clock timeutil.Clock) *userFS {
	return &userFS{
		clock: clock,
		uid:   uint32(os.Getuid()),
		gid:   uint32(os.Getgid()),
		users: newUserRegistry(api, clock),
		posts: newPostCache(api, batchSize),
	}
}

// errno translates a failure into the errno the kernel will show the
// client. Unknown inodes and unassigned indices are internal faults:
// they are logged with their stack and answered with EIO rather than
// taking the mount down.
func (fs *userFS) errno(err error) error {
	switch {
	case isNotFound(err):
		return fuse.ENOENT
	case errors.Cause(err) == errInvalidInode:
		log.Printf("internal fault: %+v", err)
		return fuse.EIO
	default:
		log.Printf("remote call failed: %+v", err)
		return fuse.EIO
	}
}

func (fs *userFS) StatFS(ctx context.Context, op *fuseops.StatFSOp) error {
	return nil
}

func (fs *userFS) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent, err := resourceFromInode(op.Parent)
	if err != nil {
		return fs.errno(err)
	}
	child, err := fs.lookup(parent, op.Name)
	if err != nil {
		return fs.errno(err)
	}
	attrs, err := fs.attributes(child)
	if err != nil {
		return fs.errno(err)
	}
	op.Entry.Child = child.inode()
	op.Entry.Attributes = attrs
	// Expirations stay zero: the kernel revalidates on every access.
	return nil
}

func (fs *userFS) lookup(parent resource, name string) (resource, error) {
	switch parent.kind {
	case rootKind:
		i, _, err := fs.users.resolve(name)
		if err != nil {
			return resource{}, err
		}
		return resource{kind: userKind, user: i}, nil
	case userKind:
		kind, ok := userEntryKinds[name]
		if !ok {
			return resource{}, errors.WithStack(errNotFound)
		}
		return resource{kind: kind, user: parent.user}, nil
	case postsKind:
		posts, err := fs.userPosts(parent.user)
		if err != nil {
			return resource{}, err
		}
		seq, err := strconv.Atoi(name)
		// Listings only ever emit the canonical spelling, so "03" and
		// "+3" must not alias post 3.
		if err != nil || strconv.Itoa(seq) != name || seq < 0 || seq >= len(posts) {
			return resource{}, errors.WithStack(errNotFound)
		}
		return resource{kind: postKind, user: parent.user, post: seq}, nil
	}
	return resource{}, errors.WithStack(errNotFound)
}

func (fs *userFS) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	r, err := resourceFromInode(op.Inode)
	if err != nil {
		return fs.errno(err)
	}
	attrs, err := fs.attributes(r)
	if err != nil {
		return fs.errno(err)
	}
	op.Attributes = attrs
	return nil
}

func (fs *userFS) attributes(r resource) (fuseops.InodeAttributes, error) {
	switch r.kind {
	case rootKind:
		return fs.dirAttributes(time.Unix(0, 0)), nil
	case userKind, postsKind:
		user, err := fs.users.user(r.user)
		if err != nil {
			return fuseops.InodeAttributes{}, err
		}
		return fs.dirAttributes(time.Unix(user.createdUnix(), 0)), nil
	default:
		content, mtime, err := fs.contents(r)
		if err != nil {
			return fuseops.InodeAttributes{}, err
		}
		return fs.fileAttributes(uint64(len(content)), mtime), nil
	}
}

func (fs *userFS) dirAttributes(mtime time.Time) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Nlink:  1,
		Mode:   0555 | os.ModeDir,
		Atime:  mtime,
		Mtime:  mtime,
		Ctime:  mtime,
		Crtime: mtime,
		Uid:    fs.uid,
		Gid:    fs.gid,
	}
}

func (fs *userFS) fileAttributes(size uint64, mtime time.Time) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Nlink:  1,
		Size:   size,
		Mode:   0444,
		Atime:  mtime,
		Mtime:  mtime,
		Ctime:  mtime,
		Crtime: mtime,
		Uid:    fs.uid,
		Gid:    fs.gid,
	}
}

// contents renders a file resource and reports the timestamp its
// attributes should carry. Field files are stamped with the account
// creation time, post files with the post's.
func (fs *userFS) contents(r resource) ([]byte, time.Time, error) {
	if r.kind == postKind {
		posts, err := fs.userPosts(r.user)
		if err != nil {
			return nil, time.Time{}, err
		}
		if r.post < 0 || r.post >= len(posts) {
			return nil, time.Time{}, errors.WithStack(errNotFound)
		}
		post := posts[r.post]
		return renderPost(post), time.Unix(post.createdUnix(), 0), nil
	}
	user, err := fs.users.user(r.user)
	if err != nil {
		return nil, time.Time{}, err
	}
	return renderField(r.kind, user, fs.clock.Now()), time.Unix(user.createdUnix(), 0), nil
}

func (fs *userFS) userPosts(i int) ([]redditPost, error) {
	user, err := fs.users.user(i)
	if err != nil {
		return nil, err
	}
	return fs.posts.postsFor(strings.ToLower(user.Name))
}

func (fs *userFS) OpenFile(ctx context.Context, op *fuseops.OpenFileOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	r, err := resourceFromInode(op.Inode)
	if err != nil {
		return fs.errno(err)
	}
	if r.isDir() {
		return syscall.EISDIR
	}
	return nil
}

func (fs *userFS) ReadFile(ctx context.Context, op *fuseops.ReadFileOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	r, err := resourceFromInode(op.Inode)
	if err != nil {
		return fs.errno(err)
	}
	if r.isDir() {
		return syscall.EISDIR
	}
	content, _, err := fs.contents(r)
	if err != nil {
		return fs.errno(err)
	}
	// Reads past the end return zero bytes, not an error.
	if op.Offset >= int64(len(content)) {
		return nil
	}
	op.BytesRead = copy(op.Dst, content[op.Offset:])
	return nil
}

func (fs *userFS) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	r, err := resourceFromInode(op.Inode)
	if err != nil {
		return fs.errno(err)
	}
	if !r.isDir() {
		return fuse.ENOTDIR
	}
	return nil
}

func (fs *userFS) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	r, err := resourceFromInode(op.Inode)
	if err != nil {
		return fs.errno(err)
	}
	if !r.isDir() {
		return fuse.ENOTDIR
	}
	entries, err := fs.dirEntries(r)
	if err != nil {
		return fs.errno(err)
	}
	if op.Offset > fuseops.DirOffset(len(entries)) {
		return fuse.EINVAL
	}
	for _, entry := range entries[op.Offset:] {
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], entry)
		if n == 0 {
			break
		}
		op.BytesRead += n
	}
	return nil
}

// dirEntries is the full deterministic listing of a directory, synthetic
// "." and ".." first. Each entry's Offset is the 1-based position after
// it, which is what lets the kernel resume a partial listing at
// op.Offset and see consistent results as long as the caches are
// unchanged.
func (fs *userFS) dirEntries(r resource) ([]fuseutil.Dirent, error) {
	self := r.inode()
	entries := []fuseutil.Dirent{
		{Inode: self, Name: ".", Type: fuseutil.DT_Directory},
		{Inode: self, Name: "..", Type: fuseutil.DT_Directory},
	}
	switch r.kind {
	case rootKind:
		for i := 0; i < fs.users.count(); i++ {
			user, err := fs.users.user(i)
			if err != nil {
				return nil, err
			}
			entries = append(entries, fuseutil.Dirent{
				Inode: resource{kind: userKind, user: i}.inode(),
				Name:  user.Name,
				Type:  fuseutil.DT_Directory,
			})
		}
	case userKind:
		if _, err := fs.users.user(r.user); err != nil {
			return nil, err
		}
		for _, name := range userEntryNames {
			child := resource{kind: userEntryKinds[name], user: r.user}
			entryType := fuseutil.DT_File
			if child.isDir() {
				entryType = fuseutil.DT_Directory
			}
			entries = append(entries, fuseutil.Dirent{
				Inode: child.inode(),
				Name:  name,
				Type:  entryType,
			})
		}
	case postsKind:
		posts, err := fs.userPosts(r.user)
		if err != nil {
			return nil, err
		}
		for seq := range posts {
			entries = append(entries, fuseutil.Dirent{
				Inode: resource{kind: postKind, user: r.user, post: seq}.inode(),
				Name:  strconv.Itoa(seq),
				Type:  fuseutil.DT_File,
			})
		}
	}
	for i := range entries {
		entries[i].Offset = fuseops.DirOffset(i + 1)
	}
	return entries, nil
}

func (fs *userFS) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	return nil
}

func (fs *userFS) FlushFile(ctx context.Context, op *fuseops.FlushFileOp) error {
	return nil
}

func (fs *userFS) ReleaseFileHandle(ctx context.Context, op *fuseops.ReleaseFileHandleOp) error {
	return nil
}

func (fs *userFS) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	return nil
}

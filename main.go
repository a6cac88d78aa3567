package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s mountpoint", os.Args[0])
	}
	mountPoint := os.Args[1]
	config, err := loadDefaultConfig()
	if err != nil {
		log.Fatalf("%+v", err)
	}
	fs := newUserFS(newRedditClient(config), config.BatchSize, timeutil.RealClock())
	mfs, err := fuse.Mount(mountPoint, fuseutil.NewFileSystemServer(fs), &fuse.MountConfig{
		FSName:      "redditfs",
		ReadOnly:    true,
		ErrorLogger: log.New(os.Stderr, "fuse: ", 0),
	})
	if err != nil {
		log.Fatalf("mounting at %q: %+v", mountPoint, err)
	}
	log.Printf("mounted at %q", mountPoint)

	go func() {
		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
		for range interrupts {
			log.Print("unmounting")
			if err := fuse.Unmount(mountPoint); err != nil {
				// Some process is probably still inside the mount;
				// stay up and let the next signal try again.
				log.Printf("unmount failed: %v", err)
				continue
			}
			return
		}
	}()

	if err := mfs.Join(context.Background()); err != nil {
		log.Fatalf("serving: %+v", err)
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/pointfeed/internal/rpc"
)

var errUnknownExtension = errors.New("unknown media extension, use an image or video file")

var mediaTypes = map[string]string{
	".png":  "IMAGE",
	".jpg":  "IMAGE",
	".jpeg": "IMAGE",
	".gif":  "IMAGE",
	".webp": "IMAGE",
	".mp4":  "VIDEO",
	".mov":  "VIDEO",
	".webm": "VIDEO",
}

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// readUpload asks for an optional attachment path. An empty answer means no
// attachment.
func (a *App) readUpload() (*rpc.MediaUpload, error) {
	path, err := getSimpleText(a.reader, "Attach media file (leave empty for none)", a.out)
	if err != nil || path == "" {
		return nil, err
	}

	fileType, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, errUnknownExtension
	}

	content, err := readFile(path)
	if err != nil {
		return nil, err
	}

	return &rpc.MediaUpload{Filename: filepath.Base(path), FileType: fileType, Content: content}, nil
}

func (a *App) Post(ctx context.Context) error {
	body, err := GetMultiline(a.reader, "Write your post", a.out)
	if err != nil {
		return err
	}

	upload, err := a.readUpload()
	if err != nil {
		return err
	}

	post, err := a.client.CreatePost(ctx, body, upload)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Posted:")
	printPost(a.out, post)
	return nil
}

func (a *App) Edit(ctx context.Context, postID string) error {
	body, err := GetMultiline(a.reader, "Write the new text", a.out)
	if err != nil {
		return err
	}

	upload, err := a.readUpload()
	if err != nil {
		return err
	}

	post, err := a.client.UpdatePost(ctx, postID, body, upload)
	if err != nil {
		return err
	}

	printPost(a.out, post)
	return nil
}

func (a *App) Delete(ctx context.Context, postID string) error {
	if _, err := a.client.DeletePost(ctx, postID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", postID)
	return nil
}

func (a *App) Posts(ctx context.Context, userID string) error {
	posts, err := a.client.Posts(ctx, userID)
	if err != nil {
		return err
	}
	printPosts(a.out, posts)
	return nil
}

func (a *App) Feed(ctx context.Context) error {
	posts, err := a.client.Feed(ctx)
	if err != nil {
		return err
	}
	printPosts(a.out, posts)
	return nil
}

func (a *App) Follow(ctx context.Context, userID string) error {
	user, err := a.client.Follow(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Following %s\n", displayName(user.Name, user.Email, user.ID))
	return nil
}

func (a *App) Unfollow(ctx context.Context, userID string) error {
	user, err := a.client.Unfollow(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Unfollowed %s\n", displayName(user.Name, user.Email, user.ID))
	return nil
}

// Watch starts printing new posts from followed users in the background.
// The follow list is read when the watch starts; restart it after following
// someone new.
func (a *App) Watch(ctx context.Context) error {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	if a.stopWatcher != nil {
		fmt.Fprintln(a.out, "Already watching")
		return nil
	}

	wctx, cancel := context.WithCancel(ctx)
	a.stopWatcher = cancel

	go func() {
		err := a.client.Watch(wctx, func(p *rpc.Post) {
			fmt.Fprintln(a.out, "New post:")
			printPost(a.out, p)
		})
		if err != nil {
			fmt.Fprintln(a.out, "Watch stopped:", err)
		}

		a.watchMu.Lock()
		if wctx.Err() == nil {
			a.stopWatcher = nil
		}
		a.watchMu.Unlock()
		cancel()
	}()

	fmt.Fprintln(a.out, "Watching for new posts, type 'unwatch' to stop")
	return nil
}

func (a *App) Unwatch(context.Context) error {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	if a.stopWatcher != nil {
		a.stopWatcher()
		a.stopWatcher = nil
	}
	return nil
}

func printPost(w io.Writer, p *rpc.Post) {
	fmt.Fprintf(w, "[%s] %s by %s\n", p.CreatedAt.Format("2006-01-02 15:04"), p.ID, p.PostedBy)
	fmt.Fprintln(w, "  "+strings.ReplaceAll(p.Body, "\n", "\n  "))
	if p.MediaURL != "" {
		fmt.Fprintln(w, "  media:", p.MediaURL)
	}
}

func printPosts(w io.Writer, posts []*rpc.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts")
		return
	}
	for _, p := range posts {
		printPost(w, p)
	}
}

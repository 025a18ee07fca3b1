package controllers

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/cppla/postboard/gateway"
	"github.com/cppla/postboard/models"
)

// maxAPIPageSize caps page_size on the JSON API.
const maxAPIPageSize = 100

func parsePagination(pageStr, sizeStr string, defaultSize int) (int, int) {
	page := 1
	pageSize := defaultSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= maxAPIPageSize {
		pageSize = s
	}
	return page, pageSize
}

// loadPostsAndUsers fetches both collections concurrently; either failure
// fails the whole load.
func loadPostsAndUsers(ctx context.Context, gw gateway.Gateway) ([]models.Post, []models.User, error) {
	var (
		posts []models.Post
		users []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = gw.ListPosts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = gw.ListUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return posts, users, nil
}

// loadPostAndUsers fetches one post and the user list concurrently. A user
// list failure is reported separately so the post can still be shown.
func loadPostAndUsers(ctx context.Context, gw gateway.Gateway, id int) (post models.Post, users []models.User, postErr, usersErr error) {
	var g errgroup.Group
	g.Go(func() error {
		post, postErr = gw.GetPost(ctx, id)
		return nil
	})
	g.Go(func() error {
		users, usersErr = gw.ListUsers(ctx)
		return nil
	})
	_ = g.Wait()
	return post, users, postErr, usersErr
}

// postID parses a path id; anything but a positive integer is not found.
func postID(s string) (int, bool) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

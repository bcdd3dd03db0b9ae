package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/forum-submission-api/internal/models"
	"github.com/noah-isme/forum-submission-api/internal/repository"
	"github.com/noah-isme/forum-submission-api/internal/service"
	"github.com/noah-isme/forum-submission-api/pkg/config"
	"github.com/noah-isme/forum-submission-api/pkg/database"
	"github.com/noah-isme/forum-submission-api/pkg/i18n"
	"github.com/noah-isme/forum-submission-api/pkg/logger"
)

// render_preview prints the HTML a capture would store for one user's posts
// in one forum, without writing a submission.
func main() {
	var (
		forumID int64
		userID  int64
		role    string
		outPath string
		timeout time.Duration
	)

	flag.Int64Var(&forumID, "forum", 0, "Forum id to collect posts from")
	flag.Int64Var(&userID, "user", 0, "Author whose posts are collected")
	flag.StringVar(&role, "role", string(models.RoleTeacher), "Role the preview is rendered for")
	flag.StringVar(&outPath, "out", "", "Write HTML to this file instead of stdout")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	if forumID <= 0 || userID <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer db.Close()

	forums := repository.NewForumRepository(db)
	viewer := service.NewCapabilityService().ViewerFor(&models.JWTClaims{UserID: userID, Role: models.UserRole(role)})
	// Rendering as the author would mark posts read; preview never does.
	viewer.UserID = 0
	now := time.Now()

	collector := service.NewPostCollector(forums, cfg.Forum.EnableTimedPosts, nil, logr)
	posts, err := collector.CollectPosts(ctx, forumID, userID, viewer, now)
	if err != nil {
		log.Fatalf("failed to collect posts: %v", err)
	}

	forum, err := forums.FindForum(ctx, forumID)
	if err != nil {
		log.Fatalf("failed to load forum %d: %v", forumID, err)
	}

	renderer := service.NewPostRenderer(forums, cfg.Forum, i18n.MustNew(), logr)
	html, err := renderer.RenderAllPosts(ctx, posts, forum, viewer, now)
	if err != nil {
		log.Fatalf("failed to render posts: %v", err)
	}

	if outPath == "" {
		fmt.Println(html)
		return
	}
	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", outPath, err)
	}
	fmt.Printf("%d posts rendered to %s\n", len(posts), outPath)
}

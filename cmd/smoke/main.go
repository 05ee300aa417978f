// Command smoke exercises a running bug tracker API end to end. The API URL
// comes from the usual config files and BUGTRACKER_API_URL.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robby/bugtracker/internal/api"
	"github.com/robby/bugtracker/internal/config"
	"github.com/robby/bugtracker/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("API: %s\n", cfg.APIURL)

	client := api.New(cfg.APIURL, api.WithTimeout(10*time.Second))
	ctx := context.Background()

	status, err := client.Health(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Health: %s\n\n", status)

	created, err := client.CreateBug(ctx, domain.BugInput{
		Title:       fmt.Sprintf("smoke test %s", time.Now().Format(time.RFC3339)),
		Description: "Created by cmd/smoke",
		Status:      domain.StatusOpen,
		Priority:    domain.DefaultPriority,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Created #%d %q (%s/%s)\n", created.ID, created.Title, created.Status, created.Priority)

	bugs, err := client.ListBugs(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nBugs (%d):\n", len(bugs))
	found := false
	for _, b := range bugs {
		fmt.Printf("  #%d: %s [%s, %s]\n", b.ID, b.Title, b.Status, b.Priority)
		if b.ID == created.ID {
			found = true
		}
	}
	if !found {
		log.Fatalf("created bug #%d missing from list", created.ID)
	}

	inProgress := domain.StatusInProgress
	updated, err := client.UpdateBug(ctx, created.ID, domain.BugPatch{Status: &inProgress})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nUpdated #%d status: %s\n", updated.ID, updated.Status)

	if _, err := client.AddComment(ctx, created.ID, domain.CommentInput{Author: "smoke", Content: "looks reproducible"}); err != nil {
		log.Fatal(err)
	}
	comments, err := client.ListComments(ctx, created.ID)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Comments (%d):\n", len(comments))
	for _, c := range comments {
		fmt.Printf("  %s: %s\n", c.Author, c.Content)
	}

	if err := client.DeleteBug(ctx, created.ID); err != nil {
		log.Fatal(err)
	}
	if _, err := client.GetBug(ctx, created.ID); !api.IsNotFound(err) {
		log.Fatalf("expected 404 after delete, got %v", err)
	}
	fmt.Printf("\nDeleted #%d\n", created.ID)
}

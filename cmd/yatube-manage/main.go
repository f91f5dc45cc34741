// Command yatube-manage performs the out-of-band administration the API
// does not expose: creating users and groups.
//
//	yatube-manage createuser -username alice -password secret123 [-email a@example.com]
//	yatube-manage creategroup -title Cats -slug cats [-description "..."]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"yatube/internal/config"
	"yatube/internal/logging"
	"yatube/internal/models"
	"yatube/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger, logCloser, err := logging.New(os.Stderr, cfg.Log.Level, "")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialise logger")
	}
	defer logCloser.Close()

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer st.Close()

	switch os.Args[1] {
	case "createuser":
		err = createUser(ctx, st, os.Args[2:])
	case "creategroup":
		err = createGroup(ctx, st, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		logger.WithError(err).Fatal(os.Args[1] + " failed")
	}
}

func createUser(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("createuser", flag.ExitOnError)
	username := fs.String("username", "", "username (required)")
	password := fs.String("password", "", "password (required)")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("-username and -password are required")
	}
	user, err := st.CreateUser(ctx, *username, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("created user %d %s\n", user.ID, user.Username)
	return nil
}

func createGroup(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("creategroup", flag.ExitOnError)
	title := fs.String("title", "", "group title (required)")
	slug := fs.String("slug", "", "unique slug (required)")
	description := fs.String("description", "", "group description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" || *slug == "" {
		return fmt.Errorf("-title and -slug are required")
	}
	group := &models.Group{Title: *title, Slug: *slug, Description: *description}
	if err := st.CreateGroup(ctx, group); err != nil {
		return err
	}
	fmt.Printf("created group %d %s\n", group.ID, group.Slug)
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: yatube-manage createuser|creategroup [flags]")
	os.Exit(2)
}

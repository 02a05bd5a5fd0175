package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const tempPasswordLength = 16

func main() {
	logg := logger.New(logger.Options{ServiceName: "create-admin"})
	_ = godotenv.Load()

	name := flag.String("name", "", "admin display name")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password (prompted when empty)")
	generate := flag.Bool("generate-password", false, "generate a temporary password instead of prompting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "create-admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	if *generate && *password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			logg.Error(ctx, "failed to generate password", err)
			os.Exit(1)
		}
		*password = generated
		fmt.Printf("generated password: %s\n", generated)
	}

	req, err := collectRequest(os.Stdin, os.Stdout, auth.AdminRegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	svc, err := auth.NewAdminRegisterService(users.NewRepository(dbClient.DB()), cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to create admin register service", err)
		os.Exit(1)
	}

	res, err := svc.Register(ctx, req)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeInternal {
			fmt.Fprintln(os.Stderr, typed.Message())
			os.Exit(1)
		}
		logg.Error(ctx, "failed to create admin", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"user_id":  res.User.ID.String(),
		"promoted": res.Promoted,
	}), "admin ready")
	if res.Promoted {
		fmt.Printf("existing user %s <%s> promoted to admin\n", res.User.Name, res.User.Email)
		return
	}
	fmt.Printf("admin %s <%s> created\n", res.User.Name, res.User.Email)
}

// collectRequest prompts for any field not supplied by flags.
func collectRequest(in io.Reader, out io.Writer, req auth.AdminRegisterRequest) (auth.AdminRegisterRequest, error) {
	reader := bufio.NewReader(in)
	prompt := func(label, current string) (string, error) {
		if strings.TrimSpace(current) != "" {
			return strings.TrimSpace(current), nil
		}
		fmt.Fprintf(out, "%s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimSpace(line), nil
	}

	var err error
	if req.Name, err = prompt("Name", req.Name); err != nil {
		return req, err
	}
	if req.Email, err = prompt("Email", req.Email); err != nil {
		return req, err
	}
	if req.Password, err = prompt("Password (blank to promote an existing user)", req.Password); err != nil {
		return req, err
	}
	if req.Name == "" || req.Email == "" {
		return req, fmt.Errorf("name and email are required")
	}
	return req, nil
}

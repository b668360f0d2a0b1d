// Command provision manages judging accounts directly in the postgres store.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/Dosada05/bridge-judging/config"
	"github.com/Dosada05/bridge-judging/db"
	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
	"github.com/Dosada05/bridge-judging/services"
	"github.com/spf13/cobra"
)

// connector opens the store; the close func releases it.
type connector func(ctx context.Context) (*sql.DB, func(), error)

// store is what the subcommands need from an open connection.
type store struct {
	users   repositories.UserRepository
	migrate func(ctx context.Context) error
}

type storeOpener func(ctx context.Context) (*store, func(), error)

func postgresOpener(connect connector) storeOpener {
	return func(ctx context.Context) (*store, func(), error) {
		conn, closeFn, err := connect(ctx)
		if err != nil {
			return nil, nil, err
		}
		return &store{
			users:   repositories.NewPostgresUserRepository(conn),
			migrate: func(ctx context.Context) error { return db.CreateSchema(ctx, conn) },
		}, closeFn, nil
	}
}

func connectFromConfig(_ context.Context) (*sql.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.StorageDriver != config.StorageDriverPostgres {
		return nil, nil, fmt.Errorf("provision needs STORAGE_DRIVER=%s, got %s", config.StorageDriverPostgres, cfg.StorageDriver)
	}
	conn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, nil, err
	}
	return conn, func() { _ = conn.Close() }, nil
}

func newRootCmd(open storeOpener, bcryptCost int) *cobra.Command {
	root := &cobra.Command{
		Use:           "provision",
		Short:         "Provision accounts for the judging service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newUserCmd(open, bcryptCost), newSchemaCmd(open))
	return root
}

func newUserCmd(open storeOpener, bcryptCost int) *cobra.Command {
	var (
		email    string
		name     string
		role     string
		password string
	)
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create a volunteer, judge or admin account",
		Long: `Create an account that can sign in to the judging service.
The role decides the landing view: admin -> dashboard, judge -> scoring,
volunteer -> check-in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := services.NewUserService(s.users, bcryptCost).Provision(ctx, services.ProvisionUserInput{
				Email:    email,
				Name:     name,
				Role:     models.UserRole(role),
				Password: password,
			})
			if err != nil {
				return fmt.Errorf("failed to provision user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Email, user.UID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "sign-in email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(models.RoleVolunteer), "volunteer, judge or admin")
	cmd.Flags().StringVar(&password, "password", "", "initial password (at least 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSchemaCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the database tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			if err := s.migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
			return nil
		},
	}
}

func main() {
	root := newRootCmd(postgresOpener(connectFromConfig), 0)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

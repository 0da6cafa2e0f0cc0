package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flagkeep/flagkeep/pkg/permissions"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user with a root role",
	Long: `Create a user with a root role.

This is how the first admin of a new instance is created. The password
may also be given in FLAGKEEP_USER_PASSWORD to keep it out of the
process list. A user without a password cannot log in but can be issued
tokens with "flagkeepctl user token".

Example:
  flagkeepctl user create admin --password s3cret
  flagkeepctl user create ci --role Editor`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")
		if password == "" {
			password = os.Getenv("FLAGKEEP_USER_PASSWORD")
		}

		id, err := createUser(args[0], password, role)
		if err != nil {
			fail("Failed to create user: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Created user '%s' with role %s\n", args[0], role)
		fmt.Println(id)
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().String("password", "", "Password for the user")
	userCreateCmd.Flags().String("role", permissions.RoleAdmin, "Root role of the user")
}

func createUser(username, password, role string) (int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return 0, err
	}
	database, err := connect(cfg, logger)
	if err != nil {
		return 0, err
	}

	users, err := newUserService(database, nil, logger)
	if err != nil {
		return 0, err
	}
	user, err := users.Create(context.Background(), username, password, role)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

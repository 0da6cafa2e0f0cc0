package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/service"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
	Long:  `Bootstrap users and issue session tokens for them.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'user' requires a subcommand (create, token)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
}

func newUserService(database *gorm.DB, issuer service.TokenIssuer, logger *zap.Logger) (*service.UserService, error) {
	auditor, err := newAuditor(database, logger)
	if err != nil {
		return nil, err
	}
	stores := server.GormStores(database)
	return service.NewUserService(stores.Users, stores.Roles, stores.Access, issuer, auditor, logger), nil
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gatehouse",
	Short: "Gatehouse is a password-login session service",
	Long: `Gatehouse authenticates users by password, issues signed session
cookies backed by server-side session records with inactivity expiry, and
reaps expired sessions in the background.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

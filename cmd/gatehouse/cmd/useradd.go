package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tfields/gatehouse/auth"
	"github.com/tfields/gatehouse/internal/util"
	"github.com/tfields/gatehouse/store/sqlite"
)

var useraddUsername string

var useraddCmd = &cobra.Command{
	Use:   "useradd",
	Short: "Provision a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if useraddUsername == "" {
			return fmt.Errorf("--username is required")
		}
		username := util.NormalizeUsername(useraddUsername)

		fmt.Fprint(os.Stderr, "Enter password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		defer util.WipeBytes(password)
		if len(password) == 0 {
			return fmt.Errorf("password must not be empty")
		}

		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		users, err := sqlite.Open(dataDir + "/users.db")
		if err != nil {
			return fmt.Errorf("failed to open user store: %w", err)
		}
		defer users.Close()

		hasher, err := auth.NewHasher(auth.DefaultArgon2idParams())
		if err != nil {
			return fmt.Errorf("failed to initialize password hasher: %w", err)
		}
		hash, err := hasher.Hash(string(password))
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		user, err := users.Create(cmd.Context(), username, hash)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		fmt.Printf("Created user %q (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(useraddCmd)
	useraddCmd.Flags().StringVarP(&useraddUsername, "username", "u", "", "Username to provision")
	useraddCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
}

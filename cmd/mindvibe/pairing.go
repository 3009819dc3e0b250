package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/spf13/cobra"

	"github.com/hisr2024/MindVibe-sub009/server/auth"
	"github.com/hisr2024/MindVibe-sub009/store"
	"github.com/hisr2024/MindVibe-sub009/store/db"
)

// pairingCmd manages device pairings from the command line. Pairing
// codes are generated here and printed exactly once; only the bcrypt
// hash ever reaches the database.
var pairingCmd = &cobra.Command{
	Use:   "pairing",
	Short: "Manage device pairings",
}

var pairingCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a pairing and print its one-time code",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			name := args[0]
			code := shortuuid.New()

			hash, err := auth.HashPairingCode(code)
			if err != nil {
				return err
			}
			if _, err := s.CreatePairing(ctx, &store.CreatePairing{Name: name, KeyHash: hash}); err != nil {
				return err
			}

			fmt.Printf("Pairing %q created.\n", name)
			fmt.Printf("Pairing code (shown once, store it now): %s\n", code)
			return nil
		})
	},
}

var pairingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pairings",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			pairings, err := s.ListPairings(ctx, &store.FindPairing{})
			if err != nil {
				return err
			}
			if len(pairings) == 0 {
				fmt.Println("No pairings.")
				return nil
			}
			for _, p := range pairings {
				lastSeen := "never"
				if p.LastSeenTs > 0 {
					lastSeen = time.Unix(p.LastSeenTs, 0).Format(time.RFC3339)
				}
				fmt.Printf("%-4d %-32s created %s last seen %s\n",
					p.ID, p.Name, time.Unix(p.CreatedTs, 0).Format(time.RFC3339), lastSeen)
			}
			return nil
		})
	},
}

var pairingDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a pairing",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			name := args[0]
			pairing, err := s.GetPairing(ctx, &store.FindPairing{Name: &name})
			if err != nil {
				return err
			}
			if pairing == nil {
				return fmt.Errorf("no pairing named %q", name)
			}
			if err := s.DeletePairing(ctx, &store.DeletePairing{ID: pairing.ID}); err != nil {
				return err
			}
			fmt.Printf("Pairing %q deleted.\n", name)
			return nil
		})
	},
}

// withStore opens the configured store, runs fn, and closes it.
func withStore(fn func(context.Context, *store.Store) error) error {
	instanceProfile := loadProfile()
	if err := instanceProfile.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return err
	}

	storeInstance := store.New(dbDriver, instanceProfile)
	defer func() {
		if err := storeInstance.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()

	if err := storeInstance.Migrate(ctx); err != nil {
		return err
	}
	return fn(ctx, storeInstance)
}

func init() {
	pairingCmd.AddCommand(pairingCreateCmd, pairingListCmd, pairingDeleteCmd)
}

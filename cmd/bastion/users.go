package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ancients-collective/bastion/internal/output"
	"github.com/ancients-collective/bastion/internal/profiles"
)

func newUsersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users [name]",
		Short: "List user profiles or browse one profile's default folders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explorer := profiles.NewExplorer(a.sweepLocations().User, a.log)
			if len(args) == 0 {
				users, err := explorer.Users()
				if err != nil && !errors.Is(err, profiles.ErrNoProfiles) {
					return err
				}
				output.WriteUsers(a.stdout, explorer.Root(), users)
				if len(users) == 0 {
					return exitWith(exitIssues)
				}
				return nil
			}

			listing, err := explorer.Browse(args[0])
			if err != nil {
				return err
			}
			output.WriteListing(a.stdout, listing)
			return nil
		},
	}
}

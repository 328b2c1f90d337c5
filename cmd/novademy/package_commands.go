package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPackageCommands(app func() *app) []*cobra.Command {
	return []*cobra.Command{
		newPackagesCommand(app),
		newPackageCommand(app),
		newSubscriptionsCommand(app),
		newSubscribeCommand(app),
	}
}

func newPackagesCommand(app func() *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "packages",
		Short: "List subscription packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs, err := app().packages.Packages(cmd.Context(), search)
			if err != nil {
				return err
			}
			for _, pkg := range pkgs {
				fmt.Printf("%s  %-30s %.2f AZN (%d courses)\n", pkg.ID, pkg.Title, pkg.Price, pkg.CourseCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter packages by a search query")
	return cmd
}

func newPackageCommand(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "package <id>",
		Short: "Show one package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := app().packages.Package(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s - %.2f AZN\n%s\n", pkg.Title, pkg.Price, pkg.Description)
			for _, course := range pkg.Courses {
				fmt.Printf("  - %s\n", course.Title)
			}
			return nil
		},
	}
}

func newSubscriptionsCommand(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subscriptions",
		Short: "List the current user's active subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := app().packages.ActiveSubscriptions(cmd.Context())
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Println("No active subscriptions.")
				return nil
			}
			for _, sub := range subs {
				fmt.Printf("%s  %-30s %s (expires %s)\n", sub.ID, sub.PackageTitle, sub.Status, sub.ExpiryDate)
			}
			return nil
		},
	}
}

func newSubscribeCommand(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <packageId>",
		Short: "Purchase an annual subscription for a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app().packages.Purchase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Subscribed. Subscription id: %s\n", result.SubscriptionID)
			return nil
		},
	}
}

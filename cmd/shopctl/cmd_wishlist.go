package main

import (
	"github.com/spf13/cobra"

	id "storefront/pkg/domain"
)

func newWishlistCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wishlist",
		Aliases: []string{"wish"},
		Short:   "Show and edit the wishlist",
	}
	cmd.AddCommand(newWishlistAddCmd(a), newWishlistRemoveCmd(a), newWishlistShowCmd(a))
	return cmd
}

func newWishlistAddCmd(a *app) *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			productID, err := id.ParseProductID(args[0])
			if err != nil {
				return err
			}
			if err := a.shop.AddToWishlist(ctx, productID, id.Variant(variant)); err != nil {
				return err
			}
			return printWishlistFor(ctx, cmd, a)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "variant key")
	return cmd
}

func newWishlistRemoveCmd(a *app) *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			productID, err := id.ParseProductID(args[0])
			if err != nil {
				return err
			}
			if err := a.shop.RemoveFromWishlist(ctx, productID, id.Variant(variant)); err != nil {
				return err
			}
			return printWishlistFor(ctx, cmd, a)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "variant key")
	return cmd
}

func newWishlistShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return printWishlistFor(ctx, cmd, a)
		},
	}
}

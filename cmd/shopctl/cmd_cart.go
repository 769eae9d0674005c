package main

import (
	"strconv"

	"github.com/spf13/cobra"

	id "storefront/pkg/domain"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
	}
	cmd.AddCommand(
		newCartAddCmd(a),
		newCartRemoveCmd(a),
		newCartUpdateCmd(a),
		newCartShowCmd(a),
		newCartClearCmd(a),
	)
	return cmd
}

func newCartAddCmd(a *app) *cobra.Command {
	var (
		variant  string
		quantity int
	)
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			productID, err := id.ParseProductID(args[0])
			if err != nil {
				return err
			}
			if err := a.shop.AddToCart(ctx, productID, id.Variant(variant), quantity); err != nil {
				return err
			}
			return printCartFor(ctx, cmd, a)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "variant key, e.g. size-7")
	cmd.Flags().IntVarP(&quantity, "qty", "q", 1, "quantity to add")
	return cmd
}

func newCartRemoveCmd(a *app) *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line from the device cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			productID, err := id.ParseProductID(args[0])
			if err != nil {
				return err
			}
			if err := a.shop.RemoveFromCart(ctx, productID, id.Variant(variant)); err != nil {
				return err
			}
			return printCartFor(ctx, cmd, a)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "variant key")
	return cmd
}

func newCartUpdateCmd(a *app) *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set a device cart line's quantity; zero or less removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			productID, err := id.ParseProductID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			if err := a.shop.UpdateCartQuantity(ctx, productID, id.Variant(variant), qty); err != nil {
				return err
			}
			return printCartFor(ctx, cmd, a)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "variant key")
	return cmd
}

func newCartShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return printCartFor(ctx, cmd, a)
		},
	}
}

func newCartClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return a.shop.ClearCart(ctx)
		},
	}
}

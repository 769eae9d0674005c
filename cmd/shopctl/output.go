package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	accountModel "storefront/internal/account/models"
	"storefront/internal/catalog"
)

func formatMoney(m catalog.Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}

func printCartFor(ctx context.Context, cmd *cobra.Command, a *app) error {
	cart, err := a.shop.Cart(ctx)
	if err != nil {
		return err
	}
	return printCart(cmd.OutOrStdout(), cart)
}

func printCart(w io.Writer, cart accountModel.Cart) error {
	if len(cart.Lines) == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tVARIANT\tQTY\tUNIT\tSUBTOTAL")
	for _, l := range cart.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.ProductID, l.VariantKey, l.Quantity,
			formatMoney(l.UnitPrice), formatMoney(l.UnitPrice*catalog.Money(l.Quantity)))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%d\t\t%s\n", cart.TotalItems, formatMoney(cart.TotalPrice))
	return tw.Flush()
}

func printWishlistFor(ctx context.Context, cmd *cobra.Command, a *app) error {
	entries, err := a.shop.Wishlist(ctx)
	if err != nil {
		return err
	}
	return printWishlist(cmd.OutOrStdout(), entries)
}

func printWishlist(w io.Writer, entries []accountModel.WishlistEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "wishlist is empty")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tVARIANT\tPRICE\tSTOCK")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.ProductID, e.VariantKey, formatMoney(e.Price), e.Stock)
	}
	return tw.Flush()
}

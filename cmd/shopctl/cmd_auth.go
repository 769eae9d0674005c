package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/session"
)

// passwordEnv lets scripts avoid putting the password on the command line.
const passwordEnv = "SHOPCTL_PASSWORD"

func passwordFrom(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv(passwordEnv); v != "" {
		return v, nil
	}
	return "", errors.New("password required: pass --password or set " + passwordEnv)
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and merge the device cart and wishlist into the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}
			state, err := a.shop.Login(ctx, email, pw)
			if err != nil {
				return err
			}
			return reportSignIn(cmd, a, state)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or "+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account, sign in and merge the device state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}
			state, err := a.shop.Register(ctx, email, pw, name)
			if err != nil {
				return err
			}
			return reportSignIn(cmd, a, state)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or "+passwordEnv+")")
	cmd.Flags().StringVar(&name, "name", "", "full name (derived from the email when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; the cart and wishlist go back to the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := a.shop.Logout(ctx); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return err
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.shop.Session()
			if !st.Authenticated {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "anonymous")
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s\n", st.FullName, st.Email, st.Role)
			return err
		},
	}
}

// reportSignIn waits for the merge so the process does not exit mid-way.
func reportSignIn(cmd *cobra.Command, a *app, state session.State) error {
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "signed in as %s (%s)\n", state.Email, state.Role); err != nil {
		return err
	}
	res, ok := a.shop.WaitForMerge()
	if !ok {
		return nil
	}
	_, err := fmt.Fprintf(out, "merge %s: wishlist %d added, %d failed; cart %d added, %d failed\n",
		res.Outcome, res.Wishlist.Pushed, res.Wishlist.Failed, res.Cart.Pushed, res.Cart.Failed)
	return err
}

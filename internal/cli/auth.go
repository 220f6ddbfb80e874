package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/automation-sync/internal/credential"
	"github.com/nhle/automation-sync/internal/model"
	"github.com/nhle/automation-sync/internal/reporter"
)

// AuthCmd returns the credential management command group.
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Azure DevOps Personal Access Token",
	}
	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	return cmd
}

func authLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the organization URL and token",
		Long: `Save the organization URL to the config file and the Personal Access Token
to the system keyring. Prompts for anything not given as a flag.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			orgURL, _ := cmd.Flags().GetString("org-url")
			token, _ := cmd.Flags().GetString("token")
			verify, _ := cmd.Flags().GetBool("verify")
			if orgURL == "" {
				orgURL = e.cfg.Azure.OrgURL
			}

			if orgURL == "" || token == "" {
				if err := loginForm(&orgURL, &token).Run(); err != nil {
					return fmt.Errorf("reading credentials: %w", err)
				}
			}
			orgURL = strings.TrimSpace(orgURL)

			cfg := reporter.Config{OrgURL: orgURL, Token: token}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if verify {
				rep, err := reporter.New(cfg, e.logger)
				if err != nil {
					return err
				}
				if err := rep.OnBegin(cmd.Context(), reporter.RunInfo{Label: "auth login"}); err != nil {
					return fmt.Errorf("verifying token: %w", err)
				}
			}

			if err := credential.Set(credential.TokenKey(orgURL), token); err != nil {
				return err
			}

			e.cfg.Azure.OrgURL = orgURL
			if err := model.SaveConfig(e.cfgPath, e.cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved token for %s\n", orgURL)
			return nil
		},
	}

	cmd.Flags().String("org-url", "", "organization URL (e.g., https://dev.azure.com/contoso)")
	cmd.Flags().String("token", "", "Personal Access Token (prompted when omitted)")
	cmd.Flags().Bool("verify", false, "check the token against the service before saving")

	return cmd
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token for the configured organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if e.cfg.Azure.OrgURL == "" {
				return reporter.ErrMissingOrgURL
			}

			if err := credential.Delete(credential.TokenKey(e.cfg.Azure.OrgURL)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed token for %s\n", e.cfg.Azure.OrgURL)
			return nil
		},
	}
}

// loginForm prompts for the organization URL and token.
func loginForm(orgURL, token *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Organization URL").
				Description("Azure DevOps organization or collection URL").
				Placeholder("https://dev.azure.com/contoso").
				Value(orgURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Personal Access Token").
				Description("Needs Work Items (Read & Write) scope").
				EchoMode(huh.EchoModePassword).
				Value(token).
				Validate(validateRequired("Token")),
		),
	)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://dev.azure.com/contoso)")
	}
	return nil
}

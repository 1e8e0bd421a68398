package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cardrisk/internal/policy"
)

// policyCmd represents the policy command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage the risk scoring policy",
	Long: `Manage the risk scoring policy.

The effective policy is risk_policy.json in the policy directory
(default ~/.cardrisk). When the file is absent or unreadable, the
built-in default applies. Edit the file with any editor; invalid
documents silently fall back to the default, so check with
'cardrisk policy show' after editing.`,
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective policy",
	Long:  `Display the risk policy a scan would use right now, and where it came from.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := policy.NewStore(cfg.Policy.Dir)

		if _, err := os.Stat(store.Path()); err == nil {
			fmt.Fprintf(os.Stderr, "Policy file: %s\n\n", store.Path())
		} else {
			fmt.Fprintf(os.Stderr, "No policy file at %s (using built-in default)\n\n", store.Path())
		}

		data, err := policy.Export(store.Load())
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var policyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default policy file",
	Long:  `Create risk_policy.json in the policy directory, seeded with the built-in default, ready to edit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := policy.NewStore(cfg.Policy.Dir)

		if _, err := os.Stat(store.Path()); err == nil {
			return fmt.Errorf("policy file already exists: %s\nUse 'cardrisk policy show' to view it, or delete it first to recreate", store.Path())
		}

		// Save is best-effort by contract; on read-only storage fall back
		// to printing the document so the caller can place it manually.
		if err := store.Save(store.Load()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write %s: %v\n", store.Path(), err)
			fmt.Fprintf(os.Stderr, "Printing the policy instead; save it yourself:\n\n")
			data, exportErr := policy.Export(store.Load())
			if exportErr != nil {
				return exportErr
			}
			fmt.Print(string(data))
			return nil
		}

		fmt.Printf("✓ Created policy file: %s\n", store.Path())
		fmt.Printf("\nEdit it with your preferred editor, then verify:\n")
		fmt.Printf("  cardrisk policy show\n")
		return nil
	},
}

var policyExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the effective policy",
	Long: `Write the effective policy to a file, or to stdout when no file is
given. Useful when the policy directory is read-only and edits cannot be
persisted in place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := policy.NewStore(cfg.Policy.Dir)

		data, err := policy.Export(store.Load())
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Print(string(data))
			return nil
		}

		if err := os.WriteFile(args[0], data, 0644); err != nil {
			return fmt.Errorf("write policy export: %w", err)
		}
		fmt.Printf("✓ Exported policy: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyInitCmd)
	policyCmd.AddCommand(policyExportCmd)
}

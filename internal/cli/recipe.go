package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daryltucker/eda-runner/internal/recipe"
	"github.com/daryltucker/eda-runner/internal/version"
)

func newRecipeInitCmd(sess *Session) *cobra.Command {
	var (
		force bool
		top   string
	)

	cmd := &cobra.Command{
		Use:   "recipe-init",
		Short: "Write the default synthesis recipe to recipes/",
		Example: `  eda-runner recipe-init --top alu
  eda-runner recipe-init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if top == "" {
				top = sess.Config.Top
			}
			data := recipe.DefaultData(top, version.Version, filepath.Base(sess.Config.Tool.Binary))
			path, err := recipe.Init(sess.Layout.RecipesDir(), sess.Config.DefaultRecipe, force, data)
			if err != nil {
				return err
			}
			sess.Logger.Debug("Recipe written", "path", path, "top", top)
			fmt.Fprintf(sess.Out, "Created %s\n", sess.Layout.Rel(path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing recipe")
	cmd.Flags().StringVar(&top, "top", "", "top module name (default from config)")
	return cmd
}

func newRecipeListCmd(sess *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "recipe-list",
		Short: "List synthesis recipes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := recipe.List(sess.Layout.RecipesDir(), sess.Config.RecipeExt)
			if err != nil {
				return err
			}
			for i := range entries {
				entries[i].Path = sess.Layout.Rel(entries[i].Path)
			}
			sess.Printer().Recipes(entries)
			return nil
		},
	}
}

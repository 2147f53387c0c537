package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/recipescout/internal/database"
	"github.com/nao1215/recipescout/internal/ingredient"
	"github.com/nao1215/recipescout/internal/model"
)

// defaultListLimit is the number of recipes listed when --limit is not given.
const defaultListLimit = 20

// NewListRecipesCmd creates the list-recipes command.
func NewListRecipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-recipes",
		Short: "List stored recipes",
		Long: `List-recipes prints the recipes in the library, oldest first.

Examples:
  # First 20 recipes
  recipescout list-recipes

  # Every recipe, as JSON
  recipescout list-recipes --limit 0 --json`,
		Args: cobra.NoArgs,
		RunE: runListRecipesCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultListLimit,
		"Maximum number of recipes to list (0 means all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the recipes as JSON")

	return cmd
}

// runListRecipesCmd executes the list-recipes command.
func runListRecipesCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	recipes, err := db.List(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), recipes)
	}

	total, err := db.Count(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if total == 0 {
		fmt.Fprintln(out, "The recipe library is empty.")
		fmt.Fprintln(out, "\nUse 'recipescout build-library' or 'recipescout scrape <url>' to add recipes.")
		return nil
	}
	fmt.Fprintf(out, "Recipes (%d of %d):\n\n", len(recipes), total)
	printRecipeTable(out, recipes)
	return nil
}

// NewViewRecipeCmd creates the view-recipe command.
func NewViewRecipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view-recipe <id|url>",
		Short: "Show one stored recipe",
		Long: `View-recipe prints a stored recipe, found by its id or its source URL.

With --us, metric measurements (ml, l, g, kg) are shown in US units.

Examples:
  recipescout view-recipe 12
  recipescout view-recipe --us https://smittenkitchen.com/2023/05/rhubarb-cake/`,
		Args: cobra.ExactArgs(1),
		RunE: runViewRecipeCmd,
	}

	cmd.Flags().Bool("us", false,
		"Convert metric measurements to US units")
	cmd.Flags().BoolP("json", "j", false,
		"Output the recipe as JSON")

	return cmd
}

// runViewRecipeCmd executes the view-recipe command.
func runViewRecipeCmd(cmd *cobra.Command, args []string) error {
	usUnits, err := cmd.Flags().GetBool("us")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	key := strings.TrimSpace(args[0])
	var r *model.Recipe
	if id, convErr := strconv.ParseInt(key, 10, 64); convErr == nil {
		r, err = db.Get(ctx, id)
	} else {
		r, err = db.GetByURL(ctx, key)
	}
	if err != nil {
		if errors.Is(err, database.ErrRecipeNotFound) {
			return fmt.Errorf("no recipe stored under %q", key)
		}
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), r)
	}
	printRecipe(cmd.OutOrStdout(), r, usUnits)
	return nil
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <field> <query>",
		Short: "Search stored recipes by title, ingredient, host or time",
		Long: `Search finds recipes by one field:
- title:      words of the title
- ingredient: part of any ingredient name
- host:       the source site, e.g. smittenkitchen.com
- max_time:   total time of at most the given minutes, quickest first

Examples:
  recipescout search title "chocolate cake"
  recipescout search ingredient rhubarb
  recipescout search max_time 30`,
		Args: cobra.ExactArgs(2),
		RunE: runSearchCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultListLimit,
		"Maximum number of results (0 means all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the results as JSON")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	recipes, err := db.SearchByField(cmd.Context(), args[0], args[1], limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), recipes)
	}

	out := cmd.OutOrStdout()
	if len(recipes) == 0 {
		fmt.Fprintf(out, "No recipes match %s %q.\n", args[0], args[1])
		return nil
	}
	fmt.Fprintf(out, "Recipes matching %s %q (%d):\n\n", args[0], args[1], len(recipes))
	printRecipeTable(out, recipes)
	return nil
}

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import recipes from a JSON export",
		Long: `Import adds the recipes of a JSON array, as written by export, to the library.
Recipes are matched by URL; an existing recipe with the same URL is replaced.
Use "-" to read from standard input.

Examples:
  recipescout import recipes.json
  cat recipes.json | recipescout import -`,
		Args: cobra.ExactArgs(1),
		RunE: runImportCmd,
	}
	return cmd
}

// runImportCmd executes the import command.
func runImportCmd(cmd *cobra.Command, args []string) error {
	var input io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(filepath.Clean(args[0]))
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		input = f
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cmd, cfg)
	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Import(cmd.Context(), input)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d recipes into %s\n", n, db.Path())
	return nil
}

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export stored recipes as JSON",
		Long: `Export writes the library as a JSON array that import reads back.
Without a file, the JSON is written to standard output.

Examples:
  recipescout export recipes.json
  recipescout export --limit 100 > sample.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().IntP("limit", "l", 0,
		"Maximum number of recipes to export (0 means all)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 0 {
		_, err := db.Export(cmd.Context(), cmd.OutOrStdout(), limit)
		return err
	}

	path := args[0]
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	n, err := db.Export(cmd.Context(), f, limit)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d recipes to %s\n", n, path)
	return nil
}

// openLibrary opens an existing recipe database for the read commands.
func openLibrary(cmd *cobra.Command) (*database.RecipeDB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	setupLogger(cmd, cfg)
	return openDB(cfg, false)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printRecipeTable writes one line per recipe.
func printRecipeTable(w io.Writer, recipes []*model.Recipe) {
	fmt.Fprintf(w, "  %-6s  %-40s  %-25s  %s\n", "ID", "Title", "Host", "Time")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 82))
	for _, r := range recipes {
		fmt.Fprintf(w, "  %-6d  %-40s  %-25s  %s\n",
			r.ID, truncate(r.Title, 40), truncate(r.Host, 25), totalTime(r.TotalTime))
	}
}

// printRecipe writes a recipe card.
func printRecipe(w io.Writer, r *model.Recipe, usUnits bool) {
	fmt.Fprintln(w, r.Title)
	fmt.Fprintln(w, strings.Repeat("=", max(len([]rune(r.Title)), 10)))
	fmt.Fprintf(w, "\nSource: %s\n", r.URL)
	fmt.Fprintf(w, "Time:   %s\n", totalTime(r.TotalTime))
	if r.Yields != "" {
		fmt.Fprintf(w, "Yields: %s\n", r.Yields)
	}

	if len(r.Ingredients) > 0 {
		fmt.Fprintln(w, "\nIngredients:")
		for _, ing := range r.Ingredients {
			fmt.Fprintf(w, "  - %s\n", ingredientLine(ing, usUnits))
		}
	}

	if steps := instructionLines(r.Instructions); len(steps) > 0 {
		fmt.Fprintln(w, "\nInstructions:")
		for i, step := range steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}

	if len(r.Nutrients) > 0 {
		fmt.Fprintln(w, "\nNutrition:")
		keys := make([]string, 0, len(r.Nutrients))
		for k := range r.Nutrients {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %-22s %v\n", k, r.Nutrients[k])
		}
	}
}

// ingredientLine renders an ingredient, converting metric units when usUnits is set.
func ingredientLine(ing model.Ingredient, usUnits bool) string {
	if ing.Measurement == nil {
		return ing.Name
	}
	if ing.UnitType == nil {
		return *ing.Measurement + " " + ing.Name
	}

	amount := *ing.Measurement + " " + *ing.UnitType
	if usUnits {
		if v, ok := ingredient.Quantity(*ing.Measurement); ok {
			if converted, unit := ingredient.ToUS(v, *ing.UnitType); unit != strings.ToLower(*ing.UnitType) {
				amount = ingredient.Format(converted, unit)
			}
		}
	}
	return amount + " " + ing.Name
}

func instructionLines(instructions string) []string {
	var steps []string
	for _, line := range strings.Split(instructions, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

func totalTime(minutes *int) string {
	if minutes == nil || *minutes <= 0 {
		return "-"
	}
	if *minutes < 60 {
		return fmt.Sprintf("%d min", *minutes)
	}
	h, m := *minutes/60, *minutes%60
	if m == 0 {
		return fmt.Sprintf("%d h", h)
	}
	return fmt.Sprintf("%d h %d min", h, m)
}

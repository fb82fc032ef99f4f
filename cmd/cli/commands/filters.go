package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/extractor"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// NewFiltersCmd returns the filters command
func NewFiltersCmd() *cobra.Command {
	filtersCmd := &cobra.Command{
		Use:   "filters",
		Short: "Compile retailer search filters",
	}

	compileCmd := &cobra.Command{
		Use:   "compile [query]",
		Short: "Compile a vehicle descriptor into every retailer's filters",
		Long: `Compile a vehicle descriptor into every retailer's filters.
The descriptor comes from the flags; a positional query is parsed first and
the flags override what was parsed from it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d vehicle.Descriptor
			if len(args) == 1 {
				d = extractor.Parse(args[0])
			}
			if err := descriptorFromFlags(cmd, &d); err != nil {
				return err
			}
			if err := d.Validate(); err != nil {
				return err
			}
			if !d.HasIdentity() {
				return fmt.Errorf("make and model are required, got %q", d.String())
			}

			response, err := apiClient.CompileFilters(context.Background(), d)
			if err != nil {
				return fmt.Errorf("error compiling filters: %w", err)
			}
			return printJSON(cmd, struct {
				Descriptor vehicle.Descriptor                 `json:"descriptor"`
				Retailers  map[string]*vehicle.RetailerFilter `json:"retailers"`
			}{d, response.Retailers})
		},
	}
	f := compileCmd.Flags()
	f.String("make", "", "Vehicle make")
	f.String("model", "", "Vehicle model")
	f.Int("year", 0, "Model year")
	f.Int("start-year", 0, "First model year")
	f.Int("end-year", 0, "Last model year")
	f.String("series", "", "Series such as 2500HD")
	f.StringSlice("trims", nil, "Trims")
	f.StringSlice("colors", nil, "Exterior colors")
	f.String("body-style", "", "Body style")
	f.String("drivetrain", "", "Drivetrain")
	f.Int("max-price", 0, "Maximum price")
	f.String("zip", "", "Search zip code")
	f.Int("radius", 0, "Search radius in miles")

	filtersCmd.AddCommand(compileCmd)
	return filtersCmd
}

// descriptorFromFlags overrides d with every flag the user set
func descriptorFromFlags(cmd *cobra.Command, d *vehicle.Descriptor) error {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
			*dst = strings.TrimSpace(*dst)
		}
	}
	num := func(name string, dst *int) {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}
	list := func(name string, dst *[]string) {
		if f.Changed(name) {
			*dst, _ = f.GetStringSlice(name)
		}
	}

	str("make", &d.Make)
	str("model", &d.Model)
	str("series", &d.Series)
	str("body-style", &d.BodyStyle)
	str("drivetrain", &d.Drivetrain)
	str("zip", &d.Zip)
	num("year", &d.Year)
	num("start-year", &d.StartYear)
	num("end-year", &d.EndYear)
	num("max-price", &d.MaxPrice)
	num("radius", &d.Radius)
	list("trims", &d.Trims)
	list("colors", &d.Colors)
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/kilianp07/citypredict/core/history"
	"github.com/kilianp07/citypredict/core/prediction"
	"github.com/kilianp07/citypredict/infra/logger"
)

type predictFlags struct {
	hour, dayOfWeek, month, temperature float64
	populationDensity                   float64
	windSpeed, pm25, pm10, no2, co      float64
	weather, location, wasteType        string
}

var pf predictFlags

var requiredFlags = map[prediction.Domain][]string{
	prediction.Traffic: {"hour", "day-of-week", "month", "temperature", "weather"},
	prediction.Energy:  {"hour", "month", "temperature", "population-density"},
	prediction.Water:   {},
	prediction.Waste:   {"day-of-week", "location", "waste-type"},
	prediction.Air:     {"month", "day-of-week", "temperature", "wind-speed", "pm25", "pm10", "no2", "co"},
}

var predictCmd = &cobra.Command{
	Use:       "predict <traffic|energy|water|waste|air>",
	Short:     "Run a single prediction against the local models",
	Args:      cobra.ExactArgs(1),
	ValidArgs: lo.Map(prediction.Domains(), func(d prediction.Domain, _ int) string { return string(d) }),
	RunE:      runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.Float64Var(&pf.hour, "hour", 0, "hour of day (0-23)")
	f.Float64Var(&pf.dayOfWeek, "day-of-week", 0, "day of week, Monday is 0")
	f.Float64Var(&pf.month, "month", 0, "month (1-12)")
	f.Float64Var(&pf.temperature, "temperature", 0, "temperature in Celsius")
	f.Float64Var(&pf.populationDensity, "population-density", 0, "population density")
	f.Float64Var(&pf.windSpeed, "wind-speed", 0, "wind speed")
	f.Float64Var(&pf.pm25, "pm25", 0, "PM2.5 concentration")
	f.Float64Var(&pf.pm10, "pm10", 0, "PM10 concentration")
	f.Float64Var(&pf.no2, "no2", 0, "NO2 concentration")
	f.Float64Var(&pf.co, "co", 0, "CO concentration")
	f.StringVar(&pf.weather, "weather", "", "weather label")
	f.StringVar(&pf.location, "location", "", "bin location")
	f.StringVar(&pf.wasteType, "waste-type", "", "waste type")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	dom, err := prediction.ParseDomain(args[0])
	if err != nil {
		return err
	}
	missing := lo.Filter(requiredFlags[dom], func(name string, _ int) bool {
		return !cmd.Flags().Changed(name)
	})
	if len(missing) > 0 {
		return fmt.Errorf("missing required flag --%s", missing[0])
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	disp, err := prediction.Load(prediction.Options{
		Dir:     cfg.Models.Dir,
		Files:   cfg.Models.Files,
		History: history.NewCSVSource(cfg.History.Path, cfg.History.ReadTimeout),
		Log:     logger.New("loader"),
	})
	if err != nil && disp == nil {
		return err
	}
	if err := disp.Available(dom); err != nil {
		return err
	}

	res := predict(cmd.Context(), disp, dom, pf)
	return renderResult(cmd.OutOrStdout(), dom, res)
}

func predict(ctx context.Context, d *prediction.Dispatcher, dom prediction.Domain, f predictFlags) prediction.Result {
	switch dom {
	case prediction.Traffic:
		return d.PredictTraffic(prediction.TrafficRequest{
			Hour: f.hour, DayOfWeek: f.dayOfWeek, Month: f.month, Temperature: f.temperature, Weather: f.weather,
		})
	case prediction.Energy:
		return d.PredictEnergy(prediction.EnergyRequest{
			Hour: f.hour, Month: f.month, Temperature: f.temperature, PopulationDensity: f.populationDensity,
		})
	case prediction.Water:
		if ctx == nil {
			ctx = context.Background()
		}
		return d.PredictWater(ctx)
	case prediction.Waste:
		return d.PredictWaste(prediction.WasteRequest{DayOfWeek: f.dayOfWeek, Location: f.location, WasteType: f.wasteType})
	default:
		return d.PredictAir(prediction.AirRequest{
			Month: f.month, DayOfWeek: f.dayOfWeek, Temperature: f.temperature, WindSpeed: f.windSpeed,
			PM25: f.pm25, PM10: f.pm10, NO2: f.no2, CO: f.co,
		})
	}
}

// renderResult prints the result fields as a two column table.
func renderResult(w io.Writer, dom prediction.Domain, res prediction.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	keys := lo.Keys(fields)
	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.Append([]string{"domain", string(dom)})
	for _, k := range keys {
		table.Append([]string{k, fmt.Sprint(fields[k])})
	}
	table.Render()
	if !res.OK() {
		return fmt.Errorf("prediction failed: %s", res.Message)
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	duct "Ductsizer/internal/calc/duct"
	fit "Ductsizer/internal/calc/fit"
	report "Ductsizer/internal/calc/report"
	"Ductsizer/internal/calc/units"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// flowFlags are shared by every subcommand.
type flowFlags struct {
	q, dp float64
	units string
}

func (f *flowFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.q, "q", 0, "airflow (L/s, or CFM with --units IP); omitted uses the default")
	cmd.Flags().Float64Var(&f.dp, "dp", 0, "target pressure drop (Pa/m, or in.wc/100ft); omitted uses the default")
	cmd.Flags().StringVar(&f.units, "units", "SI", "unit system: SI or IP")
}

// request passes on only the flags the user set.
func (f *flowFlags) request(cmd *cobra.Command) duct.Request {
	req := duct.Request{Units: f.units}
	if cmd.Flags().Changed("q") {
		req.Q = &f.q
	}
	if cmd.Flags().Changed("dp") {
		req.DP = &f.dp
	}
	return req
}

func (f *flowFlags) size(cmd *cobra.Command) (duct.Response, error) {
	sys, spec, err := f.request(cmd).Resolve(units.SI)
	if err != nil {
		return duct.Response{}, err
	}
	table, err := duct.Generate(spec)
	if err != nil {
		return duct.Response{}, err
	}
	return duct.Present(table, sys), nil
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithClock(clockwork.NewRealClock())
}

func newRootCmdWithClock(clock clockwork.Clock) *cobra.Command {
	root := &cobra.Command{
		Use:   "ductsize",
		Short: "Rectangular duct sizing by equal friction",
		Long: `Size rectangular supply ducts for an airflow and a target
pressure drop per metre.

The ideal square duct is found first; rectangular options are then
generated over ten heights on a 50 mm grid and flagged when their
aspect ratio falls outside 1 to 4.`,
		SilenceUsage: true,
	}
	root.AddCommand(newCalcCmd(), newWidthCmd(), newExportCmd(), newReportCmd(clock))
	return root
}

func newCalcCmd() *cobra.Command {
	var (
		flow   flowFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Print the candidate table",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := flow.size(cmd)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return printTable(cmd.OutOrStdout(), resp)
		},
	}
	flow.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func newWidthCmd() *cobra.Command {
	var (
		flow   flowFlags
		height float64
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "width",
		Short: "Find the width for a fixed duct height",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := fit.Calculate(fit.Input{Request: flow.request(cmd), Height: height}, units.SI)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(res)
			}
			mark := duct.MarkInvalid
			if res.Valid {
				mark = duct.MarkValid
			}
			l := res.Units.Labels()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Size\t%s %s %s\n", res.Size, l.Length, mark)
			fmt.Fprintf(tw, "Aspect ratio\t%.2f\n", res.AspectRatio)
			fmt.Fprintf(tw, "Velocity\t%g %s\n", res.Velocity, l.Velocity)
			fmt.Fprintf(tw, "Pressure drop\t%.3f %s\n", res.PressureDrop, l.PressureDrop)
			fmt.Fprintf(tw, "De\t%g %s\n", res.EquivalentDiameter, l.Length)
			if res.Notes != "" {
				fmt.Fprintf(tw, "Notes\t%s\n", res.Notes)
			}
			return tw.Flush()
		},
	}
	flow.register(cmd)
	cmd.Flags().Float64Var(&height, "height", 0, "duct height (mm, or in with --units IP)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		flow flowFlags
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the candidate table to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := flow.size(cmd)
			if err != nil {
				return err
			}
			if err := writeFile(out, func(w io.Writer) error { return report.WriteXLSX(w, resp) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	flow.register(cmd)
	cmd.Flags().StringVar(&out, "out", "ducts.xlsx", "output file")
	return cmd
}

func newReportCmd(clock clockwork.Clock) *cobra.Command {
	var (
		flow flowFlags
		meta report.Meta
		out  string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a PDF sizing report",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := flow.size(cmd)
			if err != nil {
				return err
			}
			date := clock.Now()
			if err := writeFile(out, func(w io.Writer) error { return report.WritePDF(w, meta, resp, date) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", out, date.Format(time.DateOnly))
			return nil
		},
	}
	flow.register(cmd)
	cmd.Flags().StringVar(&out, "out", "duct-report.pdf", "output file")
	cmd.Flags().StringVar(&meta.Project, "project", "", "project name")
	cmd.Flags().StringVar(&meta.Author, "author", "", "report author")
	cmd.Flags().StringVar(&meta.Title, "title", "", "report title")
	cmd.Flags().StringVar(&meta.Notes, "notes", "", "free-text notes")
	return cmd
}

func printTable(out io.Writer, resp duct.Response) error {
	l := resp.Labels
	fmt.Fprintf(out, "Q = %g %s, dp = %g %s\n", resp.Q, l.Flow, resp.DP, l.PressureDrop)
	fmt.Fprintf(out, "Square duct: %g×%g %s\n\n", resp.SquareSide, resp.SquareSide, l.Length)

	if len(resp.Rows) == 0 {
		fmt.Fprintln(out, resp.Message)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tOK\tW×H (%s)\tAR\tV (%s)\tdp (%s)\tDe (%s)\n", l.Length, l.Velocity, l.PressureDrop, l.Length)
	for _, row := range resp.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%g\t%.3f\t%g\n",
			row.Option, row.Marker, row.Size, row.AspectRatio, row.Velocity, row.PressureDrop, row.EquivalentDiameter)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(resp.Skipped) > 0 {
		fmt.Fprintln(out)
		for _, s := range resp.Skipped {
			fmt.Fprintf(out, "option %d (height %g mm) skipped: %s\n", s.Option, s.HeightMM, s.Reason)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

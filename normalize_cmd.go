package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"property-scraper/normalize"
)

type normalizeInput struct {
	saleType   string
	price      string
	size       string
	tenure     string
	postcode   string
	preferLet  bool
	broadLease bool
}

func newNormalizeCmd() *cobra.Command {
	var in normalizeInput
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Show the canonical values extracted from ad-hoc listing text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printNormalized(cmd.OutOrStdout(), in)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.saleType, "sale-type", "", "sale status text, e.g. \"For Sale\"")
	f.StringVar(&in.price, "price", "", "price text")
	f.StringVar(&in.size, "size", "", "size text")
	f.StringVar(&in.tenure, "tenure", "", "tenure text")
	f.StringVar(&in.postcode, "postcode", "", "address or postcode text")
	f.BoolVar(&in.preferLet, "prefer-let", false, "read \"sale\" and \"let\" together as To Let")
	f.BoolVar(&in.broadLease, "broad-lease", false, "read any \"lease\" mention as Leasehold")
	_ = cmd.MarkFlagRequired("sale-type")
	return cmd
}

func printNormalized(w io.Writer, in normalizeInput) {
	var saleOpts []normalize.SaleTypeOption
	if in.preferLet {
		saleOpts = append(saleOpts, normalize.PreferLet())
	}
	var tenureOpts []normalize.TenureOption
	if in.broadLease {
		tenureOpts = append(tenureOpts, normalize.BroadLease())
	}

	saleType := normalize.ClassifySaleType(in.saleType, saleOpts...)
	ft, ac := normalize.ExtractSize(in.size)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Field", "Input", "Value"})
	t.AppendRows([]table.Row{
		{"saleType", in.saleType, string(saleType)},
		{"price", in.price, normalize.FormatPrice(normalize.ExtractPrice(in.price, saleType))},
		{"sizeFt", in.size, normalize.FormatArea(ft)},
		{"sizeAc", in.size, normalize.FormatArea(ac)},
		{"tenure", in.tenure, string(normalize.ClassifyTenure(in.tenure, tenureOpts...))},
		{"postalCode", in.postcode, normalize.ExtractPostcode(in.postcode)},
	})
	t.Render()
	fmt.Fprintln(w)
}

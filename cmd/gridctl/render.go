package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"terraingrid/placement"
	"terraingrid/symgrid"
)

var (
	reservedColor = color.New(color.FgRed, color.Bold)
	freeColor     = color.New(color.FgGreen, color.Faint)
)

// renderGrid draws one line per row, '#' reserved and '.' free.
func renderGrid(w io.Writer, grid [][]bool) error {
	bw := bufio.NewWriter(w)
	for _, row := range grid {
		for _, used := range row {
			if used {
				reservedColor.Fprint(bw, "#")
			} else {
				freeColor.Fprint(bw, ".")
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Footer = text.FormatDefault
	return tbl
}

func statsTable(stats []placement.LevelStats) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Level", "Depth", "Size", "Free", "Used", "H Segs", "V Segs"})
	for _, s := range stats {
		cells := s.Rows * s.Cols
		tbl.AppendRow(table.Row{
			s.Name, s.Depth, fmt.Sprintf("%dx%d", s.Rows, s.Cols),
			s.FreeCells, cells - s.FreeCells, s.HSegments, s.VSegments,
		})
	}
	return tbl.Render()
}

func placementsTable(ps []placement.Placement) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Feature", "Level", "Orientation", "Row", "Col", "Length", "Root Row"})
	for _, p := range ps {
		tbl.AppendRow(table.Row{
			p.Feature, p.Level, p.Orientation.String(),
			p.Segment.Row, p.Segment.Col, p.Segment.Length, p.RootRow,
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(ps))})
	return tbl.Render()
}

func segmentsTable(segs []symgrid.Segment) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Row", "Col", "Length"})
	for _, s := range segs {
		tbl.AppendRow(table.Row{s.Row, s.Col, s.Length})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Free runs: %d", len(segs))})
	return tbl.Render()
}

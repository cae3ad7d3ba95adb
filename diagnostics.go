package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mgutz/ansi"
	"github.com/olekukonko/tablewriter"
)

// Observer receives progress from the decoder. The decoder itself never prints.
type Observer interface {
	KeyRecovered(key Key)
	ChunkDecoded(index int, decoded []byte)
	TextDecoded(text string)
}

// String formats the key the way it is reported on the console,
// without zero padding ("0x31, 0x1, ")
func (k Key) String() string {
	var sb strings.Builder
	for _, b := range k {
		fmt.Fprintf(&sb, "%#x, ", b)
	}
	return sb.String()
}

func hexList(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		fmt.Fprintf(&sb, "0x%02x, ", b)
	}
	return sb.String()
}

// hexPrinter writes the recovered key, every decoded chunk and the final
// text as human readable hex
type hexPrinter struct {
	w     io.Writer
	color bool
}

func newHexPrinter(w io.Writer, color bool) *hexPrinter {
	return &hexPrinter{w: w, color: color}
}

func (p *hexPrinter) heading(s string) string {
	if !p.color {
		return s
	}
	return ansi.Color(s, "cyan+b")
}

func (p *hexPrinter) KeyRecovered(key Key) {
	fmt.Fprintf(p.w, "%s %s\n", p.heading("Key:"), key)
	fmt.Fprintln(p.w, p.heading("Chunks:"))
}

func (p *hexPrinter) ChunkDecoded(index int, decoded []byte) {
	fmt.Fprintln(p.w, hexList(decoded))
}

func (p *hexPrinter) TextDecoded(text string) {
	fmt.Fprintf(p.w, "%s %s\n", p.heading("Contents:"), text)
}

// dumpChunks renders one table row per chunk with the raw and decoded bytes
func dumpChunks(w io.Writer, data []byte, key Key) {
	decoded := decodeChunks(data, key, nil)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Chunk", "Offset", "Mask", "Raw", "Decoded"})
	table.SetAutoWrapText(false)

	for start := 0; start < len(data); start += ChunkSize {
		end := min(start+ChunkSize, len(data))
		index := start / ChunkSize

		table.Append([]string{
			strconv.Itoa(index),
			fmt.Sprintf("0x%06x", start),
			fmt.Sprintf("0x%02x", index+1),
			fmt.Sprintf("% x", data[start:end]),
			fmt.Sprintf("% x", decoded[start:end]),
		})
	}
	table.Render()
}

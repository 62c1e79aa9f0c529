package output

import (
	"context"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// QR renders text as a QR code drawn with half-block characters, one terminal
// row per two modules, and completes every row as an immediate line.
func (d *Driver) QR(ctx context.Context, text string) error {
	rows, err := QRRows(text)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := d.printLine(ctx, row+"\n", true); err != nil {
			return err
		}
	}
	return nil
}

// QRRows draws the code light-on-dark so it scans on a dark terminal.
func QRRows(text string) ([]string, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr %q: %w", text, err)
	}
	bitmap := q.Bitmap()

	var rows []string
	for y := 0; y < len(bitmap); y += 2 {
		var b strings.Builder
		for x := range bitmap[y] {
			top := !bitmap[y][x]
			bottom := y+1 < len(bitmap) && !bitmap[y+1][x]
			switch {
			case top && bottom:
				b.WriteString("█")
			case top:
				b.WriteString("▀")
			case bottom:
				b.WriteString("▄")
			default:
				b.WriteString(" ")
			}
		}
		rows = append(rows, b.String())
	}
	return rows, nil
}

package vtcore

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"

	"golang.org/x/image/draw"
)

// ITermImageArgs holds the parsed key=value arguments of an iTerm2 OSC 1337
// "File=" inline image transmission. Unlike the Kitty graphics protocol's
// numeric-key parameters (kitty.go), iTerm2 uses named keys and base64
// encodes only the file name and payload, not the argument list itself.
type ITermImageArgs struct {
	// Name is the base64-decoded file name, if the host sent one.
	Name string
	// Size is the byte-size hint the host supplied, informational only.
	Size int
	// Width and Height are raw dimension specs: "", "auto", a bare integer
	// (cell count), "NNpx" (pixels), or "NN%" (percent of the terminal).
	Width, Height string
	// PreserveAspectRatio defaults to true per iTerm2's protocol.
	PreserveAspectRatio bool
	// Inline selects display at the cursor; non-inline files are stored in
	// the image table (so GetImage-style lookups still see them) but not
	// placed on the grid, mirroring iTerm2's own "offer to save" behavior
	// for non-inline transmissions.
	Inline bool
}

// parseITermImageArgs parses the ';'-separated key=value argument list that
// precedes the ':' in a File= sequence.
func parseITermImageArgs(raw string) ITermImageArgs {
	args := ITermImageArgs{PreserveAspectRatio: true}
	for _, kv := range splitOnChar(raw, ';') {
		if kv == "" {
			continue
		}
		k, v := splitKV(kv)
		switch k {
		case "name":
			if decoded, err := stdBase64Decode(v); err == nil {
				args.Name = string(decoded)
			}
		case "size":
			if n, err := strconv.Atoi(v); err == nil {
				args.Size = n
			}
		case "width":
			args.Width = v
		case "height":
			args.Height = v
		case "preserveAspectRatio":
			args.PreserveAspectRatio = v != "0"
		case "inline":
			args.Inline = v == "1"
		}
	}
	return args
}

// decodeAnyImage decodes PNG, JPEG, or GIF file bytes to RGBA pixels. iTerm2
// File= transmissions are not restricted to one format the way Kitty's
// f=100 parameter is, so this registers the extra decoders kitty.go's
// PNG-only decodePNG does not need. maxBytes rejects a decoded image whose
// RGBA size would exceed it, the same max_transfer_bytes budget
// DecodeImageData and ParseSixel enforce for their own transports.
func decodeAnyImage(data []byte, maxBytes int64) ([]byte, uint32, uint32, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}

	bounds := img.Bounds()
	width := uint32(bounds.Dx())
	height := uint32(bounds.Dy())

	if maxBytes > 0 && int64(width)*int64(height)*4 > maxBytes {
		return nil, 0, 0, fmt.Errorf("iterm: decoded %dx%d image exceeds max transfer bytes", width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

	return dst.Pix, width, height, nil
}

// resolveITermDimension converts a width/height spec to a cell count.
// cellPx is the pixel size of one cell in that axis, imgPx is the image's
// native pixel size in that axis, and terminalCells is the grid's extent
// in that axis (for "%" specs). An empty spec or "auto" sizes to the
// image's native pixel dimensions divided evenly into cells, the same
// ceil-division idiom kittyDisplay/sixelReceivedInternal use.
func resolveITermDimension(spec string, cellPx int, imgPx uint32, terminalCells int) int {
	if spec == "" || spec == "auto" {
		if cellPx <= 0 {
			return 1
		}
		cells := int((imgPx + uint32(cellPx) - 1) / uint32(cellPx))
		if cells < 1 {
			cells = 1
		}
		return cells
	}

	numPart := spec
	unit := byte(0)
	if n := len(spec); n >= 2 && spec[n-2:] == "px" {
		numPart = spec[:n-2]
		unit = 'x'
	} else if n := len(spec); n >= 1 && spec[n-1] == '%' {
		numPart = spec[:n-1]
		unit = '%'
	}

	n, err := strconv.Atoi(numPart)
	if err != nil || n <= 0 {
		return 1
	}

	switch unit {
	case 'x':
		if cellPx <= 0 {
			return 1
		}
		cells := (n + cellPx - 1) / cellPx
		if cells < 1 {
			cells = 1
		}
		return cells
	case '%':
		cells := n * terminalCells / 100
		if cells < 1 {
			cells = 1
		}
		return cells
	default:
		return n
	}
}

// ITermInlineImage handles an iTerm2 OSC 1337 File= inline image
// transmission: decode, store in the shared ImageManager, and — when
// inline=1 — place it at the cursor exactly as kittyDisplay/
// sixelReceivedInternal do for their own protocols.
func (t *Terminal) ITermInlineImage(args ITermImageArgs, data []byte) {
	if t.middleware != nil && t.middleware.ITermInlineImage != nil {
		t.middleware.ITermInlineImage(args, data, t.itermInlineImageInternal)
		return
	}
	t.itermInlineImageInternal(args, data)
}

func (t *Terminal) itermInlineImageInternal(args ITermImageArgs, data []byte) {
	rgba, width, height, err := decodeAnyImage(data, t.config.MaxTransferBytes)
	if err != nil || width == 0 || height == 0 {
		return
	}

	imageID, evicted := t.images.StoreReportingEvictions(width, height, rgba)
	for _, id := range evicted {
		publishEvent(t.events, EventGraphicsDropped, id)
	}

	if !args.Inline {
		return
	}

	cellW, cellH := t.getCellSizePixels()

	t.mu.Lock()
	curRow := t.cursor.Row
	curCol := t.cursor.Col
	rowsTotal := t.rows
	colsTotal := t.cols
	t.mu.Unlock()

	cols := resolveITermDimension(args.Width, cellW, width, colsTotal)
	rows := resolveITermDimension(args.Height, cellH, height, rowsTotal)

	placement := &ImagePlacement{
		ImageID: imageID,
		Row:     curRow,
		Col:     curCol,
		Cols:    cols,
		Rows:    rows,
		SrcW:    width,
		SrcH:    height,
	}

	placementID := t.images.Place(placement)
	publishEvent(t.events, EventImageAdded, *placement)

	t.assignImageToCells(imageID, placementID, placement, width, height, cellW, cellH)

	t.mu.Lock()
	t.cursor.Row += rows
	if t.cursor.Row >= t.rows {
		t.cursor.Row = t.rows - 1
	}
	t.mu.Unlock()
}

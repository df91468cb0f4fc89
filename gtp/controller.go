// Package gtp exposes a typed operation set — boardsize, clear_board,
// play, genmove, undo, time_settings, time_left, final_score, showboard —
// as Go methods on Controller, plus a minimal line-oriented Dispatch for
// cmd/gtp's demo loop. It intentionally does not implement full GTP
// framing (no id numbers, no multi-line responses, no command-set
// negotiation): a conformant text-protocol server is out of scope here.
package gtp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sente-ai/gozero"
	"github.com/sente-ai/gozero/board"
)

// Controller adapts a gozero.Engine to GTP-shaped commands.
type Controller struct {
	engine *gozero.Engine
}

// New wraps an already-constructed engine.
func New(engine *gozero.Engine) *Controller {
	return &Controller{engine: engine}
}

// BoardSize implements boardsize: starts a new game on an n×n board.
func (c *Controller) BoardSize(n int) error {
	if n < 1 || n > board.MaxBoardSize {
		return errors.Errorf("gtp: unacceptable size %d", n)
	}
	c.engine.NewGame(n, c.engine.GameState().Komi())
	return nil
}

// ClearBoard implements clear_board: resets the current game, keeping
// board size and komi.
func (c *Controller) ClearBoard() {
	b := c.engine.Board()
	c.engine.NewGame(b.Size(), c.engine.GameState().Komi())
}

// KomiSet implements komi: sets the komi for the current and future games.
func (c *Controller) KomiSet(komi float32) {
	c.engine.NewGame(c.engine.Board().Size(), komi)
}

// Play implements play color vertex.
func (c *Controller) Play(colorText, vertexText string) error {
	color, err := parseColor(colorText)
	if err != nil {
		return err
	}
	_, err = c.engine.PlayText(color, vertexText)
	return err
}

// GenMove implements genmove color, returning the vertex text GTP
// expects in its reply.
func (c *Controller) GenMove(colorText string) (string, error) {
	color, err := parseColor(colorText)
	if err != nil {
		return "", err
	}
	move, _, err := c.engine.GenMove(color)
	if err != nil {
		return "", err
	}
	return board.VertexString(c.engine.Board().Size(), move), nil
}

// Undo implements undo.
func (c *Controller) Undo() error {
	if !c.engine.Undo() {
		return errors.New("gtp: cannot undo")
	}
	return nil
}

// TimeSettings implements time_settings main byo_yomi_time byo_yomi_stones.
func (c *Controller) TimeSettings(main, byoTime float64, byoStones int) {
	c.engine.SetTimeSettings(main, byoTime, byoStones, 1)
}

// TimeLeft implements time_left color time stones.
func (c *Controller) TimeLeft(colorText string, seconds float64, stones int) error {
	color, err := parseColor(colorText)
	if err != nil {
		return err
	}
	c.engine.TimeLeft(color, seconds, stones)
	return nil
}

// FinalScore implements final_score, rendering the result as GTP's
// "B+3.5" / "W+R" / "0" text.
func (c *Controller) FinalScore() string {
	if resigned, color := c.engine.GameState().Resigned(); resigned {
		return fmt.Sprintf("%s+R", colorLetter(color.Other()))
	}
	res := c.engine.FinalScore()
	if res.Margin == 0 {
		return "0"
	}
	return fmt.Sprintf("%s+%.1f", colorLetter(res.Winner), res.Margin)
}

// ShowBoard implements showboard, returning a PNG image.
func (c *Controller) ShowBoard() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.engine.ShowBoard(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseColor(s string) (board.Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "black":
		return board.Black, nil
	case "w", "white":
		return board.White, nil
	default:
		return board.Empty, errors.Errorf("gtp: unrecognized color %q", s)
	}
}

func colorLetter(c board.Color) string {
	if c == board.Black {
		return "B"
	}
	return "W"
}

// Dispatch runs one line of a deliberately minimal, non-conformant
// line-protocol: "<command> <args...>", one reply line, no id numbers or
// multi-line responses. It exists only to drive cmd/gtp's demo loop.
func (c *Controller) Dispatch(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "boardsize":
		n, err := strconv.Atoi(arg(args, 0))
		if err != nil {
			return "", err
		}
		return "", c.BoardSize(n)
	case "clear_board":
		c.ClearBoard()
		return "", nil
	case "komi":
		k, err := strconv.ParseFloat(arg(args, 0), 32)
		if err != nil {
			return "", err
		}
		c.KomiSet(float32(k))
		return "", nil
	case "play":
		return "", c.Play(arg(args, 0), arg(args, 1))
	case "genmove":
		return c.GenMove(arg(args, 0))
	case "undo":
		return "", c.Undo()
	case "time_settings":
		main, _ := strconv.ParseFloat(arg(args, 0), 64)
		byo, _ := strconv.ParseFloat(arg(args, 1), 64)
		stones, _ := strconv.Atoi(arg(args, 2))
		c.TimeSettings(main, byo, stones)
		return "", nil
	case "time_left":
		seconds, _ := strconv.ParseFloat(arg(args, 1), 64)
		stones, _ := strconv.Atoi(arg(args, 2))
		return "", c.TimeLeft(arg(args, 0), seconds, stones)
	case "final_score":
		return c.FinalScore(), nil
	default:
		return "", errors.Errorf("gtp: unknown command %q", cmd)
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

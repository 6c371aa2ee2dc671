package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PixPMusic/gopher-linkb/internal/config"
	"github.com/PixPMusic/gopher-linkb/internal/keymap"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/keystate"
)

type statusResponse struct {
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	Layer         int      `json:"layer"`
	KeyEvents     bool     `json:"key_events"`
	RepeatDelayMs int64    `json:"repeat_delay_ms"`
	RepeatRateMs  int64    `json:"repeat_rate_ms"`
	Pressed       []string `json:"pressed"`
}

type cellResponse struct {
	Column int      `json:"column"`
	Row    int      `json:"row"`
	Layers []string `json:"layers"`
}

type keymapResponse struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Cells  []cellResponse `json:"cells"`
	Text   string         `json:"text"`
}

type setKeyRequest struct {
	Key string `json:"key"`
}

type keyEventsRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type repeatRequest struct {
	DelayMs int `json:"delay_ms"`
	RateMs  int `json:"rate_ms"`
}

func (s *Server) status(c *gin.Context) {
	snap, err := s.backend.Snapshot(c.Request.Context())
	if err != nil {
		unavailable(c, err)
		return
	}

	pressed := make([]string, 0, len(snap.Pressed))
	for _, k := range snap.Pressed {
		pressed = append(pressed, k.Name())
	}
	c.JSON(http.StatusOK, statusResponse{
		Width:         snap.Width,
		Height:        snap.Height,
		Layer:         snap.Layer.Number(),
		KeyEvents:     snap.KeyEvents,
		RepeatDelayMs: snap.RepeatDelay.Milliseconds(),
		RepeatRateMs:  snap.RepeatRate.Milliseconds(),
		Pressed:       pressed,
	})
}

func listKeys(c *gin.Context) {
	all := keys.All()
	names := make([]string, 0, len(all))
	for _, k := range all {
		names = append(names, k.Name())
	}
	c.JSON(http.StatusOK, gin.H{"keys": names})
}

func (s *Server) getKeymap(c *gin.Context) {
	var km *keymap.Keymap
	err := s.backend.Do(c.Request.Context(), func(g *keystate.Grid) {
		km = g.Keymap().Clone()
	})
	if err != nil {
		unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, keymapBody(km))
}

func keymapBody(km *keymap.Keymap) keymapResponse {
	resp := keymapResponse{
		Width:  km.Width(),
		Height: km.Height(),
		Cells:  make([]cellResponse, 0, km.Width()*km.Height()),
		Text:   config.FormatLayout(km),
	}
	for col := 0; col < km.Width(); col++ {
		for row := 0; row < km.Height(); row++ {
			cell := cellResponse{Column: col, Row: row, Layers: make([]string, keys.LayerCount)}
			for l := 0; l < keys.LayerCount; l++ {
				layer := keys.Layer(l)
				cell.Layers[layer.Number()-1] = km.Get(col, row, layer).Name()
			}
			resp.Cells = append(resp.Cells, cell)
		}
	}
	return resp
}

func (s *Server) setKey(c *gin.Context) {
	col, errCol := strconv.Atoi(c.Param("col"))
	row, errRow := strconv.Atoi(c.Param("row"))
	num, errLayer := strconv.Atoi(c.Param("layer"))
	if errCol != nil || errRow != nil || errLayer != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "column, row and layer must be integers"})
		return
	}
	layer, ok := keys.LayerFromNumber(num)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "layer must be between 1 and 8"})
		return
	}

	var req setKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key, err := keys.Parse(req.Key)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if key.IsInjectable() && !s.supported(key) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": keymap.ErrUnsupportedKey.Error()})
		return
	}

	var setErr error
	var km *keymap.Keymap
	var resolved keys.Code
	err = s.backend.Do(c.Request.Context(), func(g *keystate.Grid) {
		if setErr = g.SetKey(col, row, layer, key); setErr != nil {
			return
		}
		km = g.Keymap().Clone()
		resolved = g.KeyAt(col, row)
	})
	if err != nil {
		unavailable(c, err)
		return
	}

	switch {
	case errors.Is(setErr, keymap.ErrOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": setErr.Error()})
		return
	case setErr != nil:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": setErr.Error()})
		return
	}

	for _, fn := range s.onKeymapChanged {
		fn(km)
	}
	c.JSON(http.StatusOK, gin.H{
		"column":   col,
		"row":      row,
		"layer":    num,
		"key":      key.Name(),
		"resolved": resolved.Name(),
	})
}

func (s *Server) setKeyEvents(c *gin.Context) {
	var req keyEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.backend.Do(c.Request.Context(), func(g *keystate.Grid) {
		g.SetKeyEventsEnabled(*req.Enabled)
	})
	if err != nil {
		unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key_events": *req.Enabled})
}

func (s *Server) setRepeat(c *gin.Context) {
	var req repeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var delayMs, rateMs int64
	err := s.backend.Do(c.Request.Context(), func(g *keystate.Grid) {
		g.Handler().SetRepeat(req.DelayMs, req.RateMs)
		delay, rate := g.Handler().Repeat()
		delayMs, rateMs = delay.Milliseconds(), rate.Milliseconds()
	})
	if err != nil {
		unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repeat_delay_ms": delayMs, "repeat_rate_ms": rateMs})
}

func unavailable(c *gin.Context, err error) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}

package api

import (
	"context"
	"log"
	"net/http"
	"path"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/idanlevi/volleyvision/pkg/analysis"
	"github.com/idanlevi/volleyvision/pkg/geometry"
	"github.com/idanlevi/volleyvision/pkg/video"
	"github.com/spf13/viper"
)

//sessionEntry couples a playback session with the cancel function that tears its
//render loop down. The session carries a single callback slot, so the entry guards a
//single sync-socket slot to match.
type sessionEntry struct {
	session *video.Session
	cancel  context.CancelFunc

	socketMu   sync.Mutex
	socketBusy bool
}

//acquireSocket claims the session's sync-socket slot, false when already taken
func (e *sessionEntry) acquireSocket() bool {
	e.socketMu.Lock()
	defer e.socketMu.Unlock()

	if e.socketBusy {
		return false
	}
	e.socketBusy = true
	return true
}

//releaseSocket frees the slot for the next connection
func (e *sessionEntry) releaseSocket() {
	e.socketMu.Lock()
	e.socketBusy = false
	e.socketMu.Unlock()
}

var sessionsMu sync.Mutex
var sessions = make(map[string]*sessionEntry)

func lookupSession(id string) (*sessionEntry, bool) {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	entry, ok := sessions[id]
	return entry, ok
}

//registerSessionRoutes wires the playback session API under the given group
func registerSessionRoutes(apiRoutes *gin.RouterGroup) {
	apiRoutes.POST("/Session", func(ctx *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := ctx.BindJSON(&req); err != nil || req.Name == "" {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		videoPath := path.Join(viper.GetString("directory.source"), req.Name)
		session, err := video.NewSession(videoPath)
		if err != nil {
			log.Printf("api/Session: Error, got '%v'", err)
			ctx.Status(http.StatusNotFound)
			return
		}

		runCtx, cancel := context.WithCancel(context.Background())
		id := uuid.NewString()

		sessionsMu.Lock()
		sessions[id] = &sessionEntry{session: session, cancel: cancel}
		sessionsMu.Unlock()

		//scoped render loop: starts here, stops when the session is deleted
		go func() {
			session.Run(runCtx)
			session.Close()
		}()

		ctx.JSON(http.StatusOK, gin.H{"id": id})
	})

	apiRoutes.DELETE("/Session/:id", func(ctx *gin.Context) {
		sessionsMu.Lock()
		entry, ok := sessions[ctx.Param("id")]
		delete(sessions, ctx.Param("id"))
		sessionsMu.Unlock()

		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		entry.cancel()
		ctx.Status(http.StatusOK)
	})

	apiRoutes.POST("/Session/:id/Analysis", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		payload, err := analysis.DecodePayload(ctx.Request.Body)
		if err != nil {
			log.Printf("api/Analysis: Error decoding payload, got '%v'", err)
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		entry.session.SetPayload(payload)
		ctx.Status(http.StatusOK)
	})

	apiRoutes.GET("/Session/:id/Frame", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		frame := entry.session.JPEG()
		if len(frame) == 0 {
			ctx.Status(http.StatusNoContent)
			return
		}
		ctx.Data(http.StatusOK, "image/jpeg", frame)
	})

	apiRoutes.GET("/Session/:id/Timeline", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		ctx.JSON(http.StatusOK, entry.session.TimelineView())
	})

	apiRoutes.POST("/Session/:id/TimelineViewport", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		var req struct {
			Width float64 `json:"width"`
		}
		if err := ctx.BindJSON(&req); err != nil || req.Width <= 0 {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		entry.session.SetTimelineViewport(req.Width)
		ctx.Status(http.StatusOK)
	})

	apiRoutes.POST("/Session/:id/Events/:eventId/Quality", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		var req struct {
			Quality *int `json:"quality"`
		}
		if err := ctx.BindJSON(&req); err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		if err := entry.session.SetQuality(ctx.Param("eventId"), req.Quality); err != nil {
			log.Printf("api/Quality: Error, got '%v'", err)
			ctx.Status(http.StatusNotAcceptable)
			return
		}
		ctx.Status(http.StatusOK)
	})

	apiRoutes.POST("/Session/:id/Score", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		var point analysis.ScorePoint
		if err := ctx.BindJSON(&point); err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		entry.session.AddScorePoint(point)
		ctx.Status(http.StatusOK)
	})

	apiRoutes.POST("/Session/:id/Names", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		var names map[int]string
		if err := ctx.BindJSON(&names); err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		entry.session.SetNames(names)
		ctx.Status(http.StatusOK)
	})

	apiRoutes.POST("/Session/:id/Toggles", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		var toggles video.Toggles
		if err := ctx.BindJSON(&toggles); err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		entry.session.SetToggles(toggles)
		ctx.Status(http.StatusOK)
	})

	apiRoutes.POST("/Session/:id/NetView", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		var req struct {
			Size int `json:"size"`
		}
		if err := ctx.BindJSON(&req); err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		entry.session.SetNetViewSize(req.Size)
		ctx.Status(http.StatusOK)
	})

	apiRoutes.POST("/Session/:id/Container", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		var req struct {
			W float64 `json:"w"`
			H float64 `json:"h"`
		}
		if err := ctx.BindJSON(&req); err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		entry.session.SetContainer(geometry.Dims{W: req.W, H: req.H})
		ctx.Status(http.StatusOK)
	})

	apiRoutes.POST("/Session/:id/Corners/Confirm", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		entry.session.Court().Confirm() //one way, freezes the handles
		ctx.Status(http.StatusOK)
	})

	apiRoutes.POST("/Session/:id/Pointer", func(ctx *gin.Context) {
		entry, ok := lookupSession(ctx.Param("id"))
		if !ok {
			ctx.Status(http.StatusNotFound)
			return
		}

		var ev struct {
			Type   string  `json:"type"`   //down, move, up, wheel
			Target string  `json:"target"` //video or timeline
			X      float64 `json:"x"`
			Y      float64 `json:"y"`
		}
		if err := ctx.BindJSON(&ev); err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		s := entry.session
		if ev.Target == "timeline" {
			switch ev.Type {
			case "down":
				s.TimelinePointerDown(ev.X)
			case "move":
				s.TimelinePointerMove(ev.X)
			case "up":
				s.TimelinePointerUp(ev.X)
			case "wheel":
				s.TimelineWheel(ev.X, ev.Y)
			}
			ctx.Status(http.StatusOK)
			return
		}

		switch ev.Type {
		case "down":
			s.PointerDown(ev.X, ev.Y)
		case "move":
			s.PointerMove(ev.X, ev.Y)
		case "up":
			s.PointerUp()
		}
		ctx.Status(http.StatusOK)
	})

	apiRoutes.GET("/Session/:id/ws", serveSessionSocket)
}

package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, //same-host frontend
}

//timeMessage is pushed on every frame change and play-state flip
type timeMessage struct {
	Type    string  `json:"type"`
	Frame   int     `json:"frame,omitempty"`
	Time    float64 `json:"time,omitempty"`
	Playing bool    `json:"playing"`
}

//clientCommand is what the frontend sends back: transport controls
type clientCommand struct {
	Type string  `json:"type"` //play, pause, seek
	Time float64 `json:"time,omitempty"`
}

//serveSessionSocket pushes playback position over a websocket and accepts transport
//commands. The discrete notifications ride on top of the continuous render loop - the
//loop keeps the overlay in sync, the socket keeps the rest of the page in sync.
func serveSessionSocket(ctx *gin.Context) {
	entry, ok := lookupSession(ctx.Param("id"))
	if !ok {
		ctx.Status(http.StatusNotFound)
		return
	}

	//the session has one callback slot: a second socket would silently steal it and
	//detach the first one on disconnect, so it is refused instead
	if !entry.acquireSocket() {
		ctx.Status(http.StatusConflict)
		return
	}
	defer entry.releaseSocket()

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Printf("api/ws: Error upgrading, got '%v'", err)
		return
	}
	defer conn.Close()

	s := entry.session

	var writeMu sync.Mutex
	send := func(msg timeMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("api/ws: Error writing, got '%v'", err)
		}
	}

	s.SetCallbacks(
		func(frame int, t float64) {
			send(timeMessage{Type: "time", Frame: frame, Time: t, Playing: s.Playing()})
		},
		func(playing bool) {
			send(timeMessage{Type: "playstate", Playing: playing})
		},
	)
	defer s.SetCallbacks(nil, nil)

	for {
		var cmd clientCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return //client went away, the deferred detach stops the pushes
		}

		switch cmd.Type {
		case "play":
			s.Play()
		case "pause":
			s.Pause()
		case "seek":
			s.SeekTo(cmd.Time) //epsilon rule applies inside
		}
	}
}

package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/idanlevi/volleyvision/pkg/analysis"
	"github.com/idanlevi/volleyvision/pkg/utils"
	"github.com/idanlevi/volleyvision/pkg/video"
	"github.com/spf13/viper"
)

//SetRouter builds the HTTP surface: static frontend, video streaming and the playback
//session API
func SetRouter() *gin.Engine {
	r := gin.Default()

	//serve html pages to client
	r.Static("/client", viper.GetString("frontend.static-files-path"))
	r.StaticFile("/", viper.GetString("frontend.static-files-path")+"home_page/dist/index.html")

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/ReadyVideosNames", func(ctx *gin.Context) {
		if names, err := utils.ListDir(viper.GetString("directory.ready")); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/UserUploadsVideosNames", func(ctx *gin.Context) {
		if names, err := utils.ListDir(viper.GetString("directory.source")); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/Play", func(ctx *gin.Context) {
		videoName := ctx.Request.URL.Query().Get("name")
		if videoName == "" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		analyzed := ctx.Request.URL.Query().Get("analyzed")
		if analyzed != "true" && analyzed != "false" {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		var videoPath string
		if analyzed == "true" {
			videoPath = path.Join(viper.GetString("directory.ready"), videoName)
		} else {
			videoPath = path.Join(viper.GetString("directory.source"), videoName)
		}

		if _, err := os.Stat(videoPath); err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.Status(http.StatusInternalServerError)
			return
		}

		ctx.Header("Content-Type", "video/mp4")
		http.ServeFile(ctx.Writer, ctx.Request, videoPath)
	})

	apiRoutes.POST("/Export", func(ctx *gin.Context) {
		videoName := ctx.Request.URL.Query().Get("name")
		if videoName == "" {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		go exportVideo(videoName)
		ctx.Status(http.StatusAccepted)
	})

	registerSessionRoutes(apiRoutes)

	return r
}

//exportVideo asks the external inference service for the full analysis of an uploaded
//video and burns the overlays into a ready copy
func exportVideo(videoName string) {
	videoPath := path.Join(viper.GetString("directory.source"), videoName)

	payload, err := analysis.NewClient().ProcessVideo(context.Background(), videoPath, nil)
	if err != nil {
		log.Printf("api/Export: Error analyzing '%s', got '%v'", videoName, err)
		return
	}

	if err := video.Export(videoName, payload, nil); err != nil {
		log.Printf("api/Export: Error exporting '%s', got '%v'", videoName, err)
	}
}

package video

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/idanlevi/volleyvision/pkg/analysis"
	"github.com/idanlevi/volleyvision/pkg/calibration"
	"github.com/idanlevi/volleyvision/pkg/geometry"
	"github.com/spf13/viper"
	"gocv.io/x/gocv"
)

//Export burns the analysis overlays into a copy of the video. The tagged file (XVID
//(== MPEG-4 codec) format, '.avi' extension) is written to a temp path and converted
//into the 'ready' directory. srcVideoName should include file's extension ('.mp4', etc.)
func Export(srcVideoName string, payload *analysis.Payload, names map[int]string) error {
	srcVideoPath := path.Join(viper.GetString("directory.source"), srcVideoName)
	tmpVideoPath := path.Join(viper.GetString("directory.temp"), strings.Split(srcVideoName, ".")[0]+"."+"avi")
	outputVideoPath := path.Join(viper.GetString("directory.ready"), srcVideoName)

	capture, err := gocv.VideoCaptureFile(srcVideoPath)
	if err != nil {
		return fmt.Errorf("Export: Error opening '%s', got '%v'", srcVideoPath, err)
	}
	defer capture.Close()

	fps := capture.Get(gocv.VideoCaptureFPS)
	width := int(capture.Get(gocv.VideoCaptureFrameWidth))
	height := int(capture.Get(gocv.VideoCaptureFrameHeight))

	writer, err := gocv.VideoWriterFile(tmpVideoPath, "XVID", fps, width, height, true)
	if err != nil {
		return fmt.Errorf("Export: Error opening writer for '%s', got '%v'", tmpVideoPath, err)
	}
	defer writer.Close()
	defer os.Remove(tmpVideoPath) //remove '.avi' temp file at the end of this function

	court := calibration.NewCourtModel(nil)
	if len(payload.CourtDetections) > 0 {
		court.Replace(payload.CourtDetections[0])
	}
	court.Confirm() //burned-in output has no handles

	st := &State{
		Index:       analysis.NewFrameIndex(payload),
		Court:       court,
		Names:       names,
		Toggles:     Toggles{Ball: true, Court: true, Players: true, Actions: true, NetView: true},
		NetViewSize: viper.GetInt("overlay.netview_size"),
	}

	renderer := NewRenderer()
	effectiveFPS := payload.VideoMetadata.EffectiveFPS()
	container := geometry.Dims{W: float64(width), H: float64(height)}

	frame := gocv.NewMat()
	defer frame.Close()
	buffer := gocv.NewMat()
	defer buffer.Close()

	for frameNum := 0; ; frameNum++ {
		if !capture.Read(&frame) { //finished to read all video's frames
			break
		}

		//frame-exact media time, same path the live renderer takes
		t := float64(frameNum) / effectiveFPS
		if _, ok := renderer.Compose(&buffer, frame, t, container, st); !ok {
			log.Printf("Export: Skipping frame %d of '%s', could not compose", frameNum, srcVideoName)
			continue
		}

		if err := writer.Write(buffer); err != nil {
			log.Printf("Export: Error writing frame %d, got '%v'", frameNum, err)
		}
	}

	//Convert from 'avi' to 'mp4'. example: ffmpeg -i match.avi match.mp4
	cmd := exec.Command("ffmpeg", "-y", "-i", tmpVideoPath, outputVideoPath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("Export: Error from ffmpeg, got '%v'", err)
	}

	return nil
}

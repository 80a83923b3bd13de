package analysis

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/viper"
)

//Client calls the external inference service that computes all detections. This module
//never computes detections itself - it uploads the video and decodes what comes back.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

//NewClient builds a client from the 'analysis' section of the config file
func NewClient() *Client {
	timeout := viper.GetDuration("analysis.timeout")
	if timeout == 0 {
		timeout = 15 * time.Minute //full-video inference is slow, do not cut it off
	}

	return &Client{
		baseURL:  viper.GetString("analysis.url"),
		username: viper.GetString("analysis.username"),
		password: viper.GetString("analysis.password"),
		http:     &http.Client{Timeout: timeout},
	}
}

//ProcessVideo uploads the video file and returns the full analysis payload. Confirmed
//court corners, when present, are forwarded so the service can calibrate its camera model.
func (c *Client) ProcessVideo(ctx context.Context, videoPath string, corners [][2]float64) (*Payload, error) {
	extra := map[string]string{}
	if len(corners) > 0 {
		encoded, err := json.Marshal(corners)
		if err != nil {
			return nil, fmt.Errorf("ProcessVideo: Error encoding corners, got '%v'", err)
		}
		extra["court_corners"] = string(encoded)
	}

	body, err := c.postVideo(ctx, "/process-video", videoPath, extra)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	payload, err := DecodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("ProcessVideo: Error decoding response, got '%v'", err)
	}

	return payload, nil
}

//ProcessCourtLines uploads the video and returns the service's initial court boundary
//estimate, which seeds the calibration handles
func (c *Client) ProcessCourtLines(ctx context.Context, videoPath string) (*CourtLines, error) {
	body, err := c.postVideo(ctx, "/process-court-lines", videoPath, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	lines := &CourtLines{}
	if err := json.NewDecoder(body).Decode(lines); err != nil {
		return nil, fmt.Errorf("ProcessCourtLines: Error decoding response, got '%v'", err)
	}

	return lines, nil
}

func (c *Client) postVideo(ctx context.Context, endpoint, videoPath string, extra map[string]string) (io.ReadCloser, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return nil, fmt.Errorf("postVideo: Error opening '%s', got '%v'", videoPath, err)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer file.Close()
		part, err := writer.CreateFormFile("file", path.Base(videoPath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		for key, value := range extra {
			if err := writer.WriteField(key, value); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, pr)
	if err != nil {
		return nil, fmt.Errorf("postVideo: Error building request, got '%v'", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postVideo: Error calling '%s', got '%v'", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("postVideo: '%s' returned status %d", endpoint, resp.StatusCode)
	}

	return resp.Body, nil
}

// ABOUTME: RPC client implementing Bridge over a JSON-lines stream
// ABOUTME: Spawns the host process or wraps any reader/writer pair; one reader goroutine dispatches replies

package host

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/mauromedda/overlay-wizard/internal/eventbus"
	"github.com/mauromedda/overlay-wizard/internal/log"
)

// ErrClosed is returned by calls on a closed client.
var ErrClosed = errors.New("host connection closed")

// Client talks to a remote host. Navigation handlers run on the client's
// reader goroutine.
type Client struct {
	w       io.Writer
	scanner *bufio.Scanner
	closer  func() error

	writeMu sync.Mutex
	mu      sync.Mutex
	pending map[string]chan *Message
	nextID  atomic.Int64

	nav       *eventbus.Bus[Navigation]
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

var _ Bridge = (*Client)(nil)

// NewClient starts a client reading replies from r and writing requests to w.
// closer, when non-nil, runs on Close.
func NewClient(r io.Reader, w io.Writer, closer func() error) *Client {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	c := &Client{
		w:       w,
		scanner: scanner,
		closer:  closer,
		pending: make(map[string]chan *Message),
		nav:     eventbus.New[Navigation](),
		done:    make(chan struct{}),
	}
	go c.recvLoop()
	return c
}

// Spawn starts command as the host process and connects to its stdio.
func Spawn(ctx context.Context, command string, args ...string) (*Client, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting host %q: %w", command, err)
	}

	return NewClient(stdout, stdin, func() error {
		stdin.Close()
		return cmd.Wait()
	}), nil
}

// Close shuts the connection down. Pending calls fail with ErrClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.shutdown()
		if c.closer != nil {
			c.closeErr = c.closer()
		}
	})
	return c.closeErr
}

func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	id := strconv.FormatInt(c.nextID.Add(1), 10)

	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshaling %s params: %w", method, err)
		}
		raw = data
	}

	ch := make(chan *Message, 1)
	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		return ErrClosed
	default:
	}
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.write(Message{ID: id, Method: method, Params: raw}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	case resp := <-ch:
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, resp.Error)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decoding %s result: %w", method, err)
		}
		return nil
	}
}

func (c *Client) write(m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("writing request: %w", err)
	}
	return nil
}

func (c *Client) recvLoop() {
	defer c.shutdown()

	for c.scanner.Scan() {
		line := c.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var m Message
		if err := json.Unmarshal(line, &m); err != nil {
			log.Warn("host: dropping malformed line: %v", err)
			continue
		}

		if m.ID != "" {
			c.mu.Lock()
			ch, ok := c.pending[m.ID]
			c.mu.Unlock()
			if ok {
				ch <- &m
			}
			continue
		}

		switch m.Method {
		case NotifyNavigation:
			var nav Navigation
			if len(m.Params) > 0 {
				if err := json.Unmarshal(m.Params, &nav); err != nil {
					log.Warn("host: bad navigation params: %v", err)
					continue
				}
			}
			c.nav.Publish(nav)
		default:
			log.Debug("host: ignoring notification %q", m.Method)
		}
	}
	if err := c.scanner.Err(); err != nil {
		log.Warn("host: read: %v", err)
	}
}

// Init implements Bridge.
func (c *Client) Init(ctx context.Context) error {
	return c.call(ctx, MethodInit, nil, nil)
}

// OnNavigation implements Bridge.
func (c *Client) OnNavigation(fn func(Navigation)) func() {
	return c.nav.Subscribe(fn)
}

// GetSourceSettings implements Bridge.
func (c *Client) GetSourceSettings(ctx context.Context, sourceID string) (string, bool, error) {
	var res settingsResult
	if err := c.call(ctx, MethodGetSourceSettings, sourceParams{SourceID: sourceID}, &res); err != nil {
		return "", false, err
	}
	if res.Settings == nil {
		return "", false, nil
	}
	return *res.Settings, true, nil
}

// SetSourceSettings implements Bridge.
func (c *Client) SetSourceSettings(ctx context.Context, sourceID, settings string) error {
	return c.call(ctx, MethodSetSourceSettings, sourceParams{SourceID: sourceID, Settings: settings}, nil)
}

// CreateSource implements Bridge.
func (c *Client) CreateSource(ctx context.Context, name, template string) (Source, error) {
	var src Source
	err := c.call(ctx, MethodCreateSource, createSourceParams{Name: name, Template: template}, &src)
	return src, err
}

// GetScenes implements Bridge.
func (c *Client) GetScenes(ctx context.Context) ([]Scene, error) {
	var scenes []Scene
	err := c.call(ctx, MethodGetScenes, nil, &scenes)
	return scenes, err
}

// GetActiveScene implements Bridge.
func (c *Client) GetActiveScene(ctx context.Context) (Scene, error) {
	var scene Scene
	err := c.call(ctx, MethodGetActiveScene, nil, &scene)
	return scene, err
}

// CreateSceneItem implements Bridge.
func (c *Client) CreateSceneItem(ctx context.Context, sceneID, sourceID string) error {
	return c.call(ctx, MethodCreateSceneItem, sceneItemParams{SceneID: sceneID, SourceID: sourceID}, nil)
}

// Navigate implements Bridge.
func (c *Client) Navigate(ctx context.Context, target string) error {
	return c.call(ctx, MethodNavigate, navigateParams{Target: target}, nil)
}

// UploadAsset implements Bridge.
func (c *Client) UploadAsset(ctx context.Context, f FileDescriptor) (map[string]string, error) {
	var urls map[string]string
	err := c.call(ctx, MethodUploadAsset, f, &urls)
	return urls, err
}

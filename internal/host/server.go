// ABOUTME: RPC server exposing any Bridge over a JSON-lines stream
// ABOUTME: Requests are handled in arrival order; navigation events are forwarded as notifications

package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mauromedda/overlay-wizard/internal/log"
)

// HandlerFunc serves one method.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Server serves a Bridge to a remote wizard.
type Server struct {
	bridge   Bridge
	reader   *bufio.Scanner
	writer   io.Writer
	writeMu  sync.Mutex
	handlers map[string]HandlerFunc

	// AfterInit runs after a successful init has been answered.
	AfterInit func()
}

// NewServer creates a server for b reading requests from r and writing to w.
func NewServer(b Bridge, r io.Reader, w io.Writer) *Server {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	s := &Server{
		bridge:   b,
		reader:   scanner,
		writer:   w,
		handlers: make(map[string]HandlerFunc),
	}
	s.registerBridge()
	return s
}

// Register associates a method with a handler, replacing any existing one.
func (s *Server) Register(method string, h HandlerFunc) {
	s.handlers[method] = h
}

// Run serves until the input ends or ctx is cancelled between requests.
func (s *Server) Run(ctx context.Context) error {
	unsubscribe := s.bridge.OnNavigation(func(nav Navigation) {
		params, err := json.Marshal(nav)
		if err != nil {
			log.Error("marshaling navigation: %v", err)
			return
		}
		if err := s.send(Message{Method: NotifyNavigation, Params: params}); err != nil {
			log.Warn("sending navigation: %v", err)
		}
	})
	defer unsubscribe()

	for s.reader.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := s.reader.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Message
		if err := json.Unmarshal(line, &req); err != nil {
			s.sendError("", &Error{Code: ErrCodeParse, Message: fmt.Sprintf("parse error: %v", err)})
			continue
		}
		if req.Method == "" {
			s.sendError(req.ID, &Error{Code: ErrCodeInvalidReq, Message: "missing method"})
			continue
		}

		resp := s.handle(ctx, req)
		if req.ID != "" {
			if err := s.send(resp); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}
		}
		if req.Method == MethodInit && resp.Error == nil && s.AfterInit != nil {
			s.AfterInit()
		}
	}
	return s.reader.Err()
}

func (s *Server) handle(ctx context.Context, req Message) Message {
	h, ok := s.handlers[req.Method]
	if !ok {
		return Message{ID: req.ID, Error: NewMethodNotFoundError(req.Method)}
	}

	result, err := h(ctx, req.Params)
	if err != nil {
		return Message{ID: req.ID, Error: toError(err)}
	}
	if result == nil {
		return Message{ID: req.ID}
	}
	data, err := json.Marshal(result)
	if err != nil {
		return Message{ID: req.ID, Error: &Error{Code: ErrCodeInternal, Message: fmt.Sprintf("internal error: %v", err)}}
	}
	return Message{ID: req.ID, Result: data}
}

func (s *Server) send(m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = s.writer.Write(data)
	return err
}

func (s *Server) sendError(id string, e *Error) {
	if err := s.send(Message{ID: id, Error: e}); err != nil {
		log.Warn("sending error response: %v", err)
	}
}

func decode[T any](params json.RawMessage) (T, error) {
	var v T
	if len(params) == 0 {
		return v, NewInvalidParamsError("missing params")
	}
	if err := json.Unmarshal(params, &v); err != nil {
		return v, NewInvalidParamsError(err.Error())
	}
	return v, nil
}

func (s *Server) registerBridge() {
	b := s.bridge

	s.Register(MethodInit, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return nil, b.Init(ctx)
	})
	s.Register(MethodGetSourceSettings, func(ctx context.Context, raw json.RawMessage) (any, error) {
		p, err := decode[sourceParams](raw)
		if err != nil {
			return nil, err
		}
		settings, ok, err := b.GetSourceSettings(ctx, p.SourceID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return settingsResult{}, nil
		}
		return settingsResult{Settings: &settings}, nil
	})
	s.Register(MethodSetSourceSettings, func(ctx context.Context, raw json.RawMessage) (any, error) {
		p, err := decode[sourceParams](raw)
		if err != nil {
			return nil, err
		}
		return nil, b.SetSourceSettings(ctx, p.SourceID, p.Settings)
	})
	s.Register(MethodCreateSource, func(ctx context.Context, raw json.RawMessage) (any, error) {
		p, err := decode[createSourceParams](raw)
		if err != nil {
			return nil, err
		}
		return b.CreateSource(ctx, p.Name, p.Template)
	})
	s.Register(MethodGetScenes, func(ctx context.Context, _ json.RawMessage) (any, error) {
		scenes, err := b.GetScenes(ctx)
		if err != nil {
			return nil, err
		}
		if scenes == nil {
			scenes = []Scene{}
		}
		return scenes, nil
	})
	s.Register(MethodGetActiveScene, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return b.GetActiveScene(ctx)
	})
	s.Register(MethodCreateSceneItem, func(ctx context.Context, raw json.RawMessage) (any, error) {
		p, err := decode[sceneItemParams](raw)
		if err != nil {
			return nil, err
		}
		return nil, b.CreateSceneItem(ctx, p.SceneID, p.SourceID)
	})
	s.Register(MethodNavigate, func(ctx context.Context, raw json.RawMessage) (any, error) {
		p, err := decode[navigateParams](raw)
		if err != nil {
			return nil, err
		}
		return nil, b.Navigate(ctx, p.Target)
	})
	s.Register(MethodUploadAsset, func(ctx context.Context, raw json.RawMessage) (any, error) {
		f, err := decode[FileDescriptor](raw)
		if err != nil {
			return nil, err
		}
		return b.UploadAsset(ctx, f)
	})
}

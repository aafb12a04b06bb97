package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"taskboard/auth"
	"taskboard/client"
	"taskboard/config"
	"taskboard/session"
)

// app holds what every command needs: an API client, the session store and
// the auth service on top of them.
type app struct {
	api   *client.Client
	store session.Store
	auth  *auth.Service
	log   logrus.FieldLogger

	closers []io.Closer
}

func newApp(cfg config.Config, opts ...client.Option) (*app, error) {
	log := logrus.StandardLogger().WithField("component", "taskctl")

	store, closer, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	opts = append([]client.Option{client.WithLogger(log)}, opts...)
	api := client.New(cfg.Client.APIURL, opts...)
	a := &app{
		api:   api,
		store: store,
		auth:  auth.NewService(api, store, log),
		log:   log,
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	return a, nil
}

func newStore(cfg config.Config) (session.Store, io.Closer, error) {
	switch cfg.Client.SessionStore {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return session.NewRedisStore(rdb, cfg.Client.SessionPrefix), rdb, nil
	case "file", "":
		if cfg.Client.SessionFile == "" {
			return nil, nil, errors.New("no session file configured")
		}
		return session.NewFileStore(cfg.Client.SessionFile), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Client.SessionStore)
	}
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// session loads the stored login and arms the client with its token.
func (a *app) session(ctx context.Context) (*session.Session, error) {
	sess, err := a.auth.Current(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil, errors.New("not logged in, run: taskctl login <email>")
	}
	return sess, err
}

// openFile opens path as an upload. An empty path yields nil.
func openFile(path string) (*client.File, io.Closer, error) {
	if path == "" {
		return nil, nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return &client.File{Name: filepath.Base(path), Data: f}, f, nil
}

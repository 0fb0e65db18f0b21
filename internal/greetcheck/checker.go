// Package greetcheck fires concurrent greeting requests at a running
// service and verifies every answer.
package greetcheck

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tjarratt/babble"
	"golang.org/x/sync/errgroup"
)

// QueryFunc returns a raw query string to attach to a request.
type QueryFunc func() string

// newBabbler loads the system dictionary and panics when none is installed.
var newBabbler = babble.NewBabbler

// BabbleQuery builds random word=word query strings from the system
// dictionary.
func BabbleQuery() (query QueryFunc, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = errors.Wrap(rErr, "load babble dictionary")
				return
			}
			err = errors.Errorf("load babble dictionary: %v", r)
		}
	}()

	babbler := newBabbler()
	babbler.Count = 1
	if len(babbler.Words) == 0 {
		return nil, errors.New("load babble dictionary: no words")
	}

	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return url.Values{babbler.Babble(): {babbler.Babble()}}.Encode()
	}, nil
}

type Options struct {
	URL         string
	Expect      string
	Requests    int
	Concurrency int
	Query       QueryFunc
}

type Checker struct {
	client *http.Client
	log    *logrus.Logger
}

func NewChecker(log *logrus.Logger, client *http.Client) *Checker {
	if client == nil {
		client = http.DefaultClient
	}
	return &Checker{
		client: client,
		log:    log,
	}
}

// Check sends opts.Requests GETs to the root of opts.URL and returns every
// mismatch it saw, or nil when all answers were 200 with the expected body.
func (c *Checker) Check(ctx context.Context, opts Options) error {
	if opts.Requests <= 0 {
		return errors.New("requests must be positive")
	}
	target := strings.TrimSuffix(opts.URL, "/") + "/"

	var (
		mu     sync.Mutex
		result *multierror.Error
	)

	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i := 0; i < opts.Requests; i++ {
		i := i
		g.Go(func() error {
			requestURL := target
			if opts.Query != nil {
				requestURL += "?" + opts.Query()
			}

			if err := c.checkOne(ctx, requestURL, opts.Expect); err != nil {
				mu.Lock()
				result = multierror.Append(result, errors.Wrapf(err, "request %d", i))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := result.ErrorOrNil(); err != nil {
		c.log.WithField("failures", result.Len()).Warn("greeting check failed")
		return err
	}

	c.log.WithFields(logrus.Fields{
		"url":      target,
		"requests": opts.Requests,
	}).Info("greeting check passed")
	return nil
}

func (c *Checker) checkOne(ctx context.Context, requestURL, expect string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	response, err := c.client.Do(request)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}

	if response.StatusCode != http.StatusOK {
		return errors.Errorf("%s: status %d", requestURL, response.StatusCode)
	}
	if string(body) != expect {
		return errors.Errorf("%s: body %q, want %q", requestURL, body, expect)
	}

	c.log.WithField("url", requestURL).Debug("greeting ok")
	return nil
}

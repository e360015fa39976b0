package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/environment-aggregation/internal/advisory"
	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

const (
	branchAirQuality = "air-quality"
	branchWeather    = "weather"
	branchAdvisory   = "health"

	modeCity        = "city"
	modeCoordinates = "coordinates"

	defaultLabel = "Location"
)

// Orchestrator queries the three providers and pushes the merged outcome
// to the sinks.
type Orchestrator struct {
	air      AirQualityProvider
	weather  WeatherProvider
	advisory AdvisoryProvider
	sinks    Sinks
	opts     Options
	recorder Recorder
	logger   zerolog.Logger

	latest  atomic.Uint64
	applyMu sync.Mutex
}

func NewOrchestrator(
	air AirQualityProvider,
	wx WeatherProvider,
	adv AdvisoryProvider,
	sinks Sinks,
	opts Options,
	recorder Recorder,
	logger zerolog.Logger,
) *Orchestrator {
	if opts.Radius <= 0 {
		opts.Radius = airquality.MaxRadius
	}
	return &Orchestrator{
		air:      air,
		weather:  wx,
		advisory: adv,
		sinks:    sinks,
		opts:     opts,
		recorder: recorder,
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}
}

type branch struct {
	name string
	fn   func(ctx context.Context) error
}

type branchError struct {
	name string
	err  error
}

func (e *branchError) Error() string {
	return fmt.Sprintf("%s: %v", e.name, e.err)
}

func (e *branchError) Unwrap() error {
	return e.err
}

// run executes the branches concurrently and returns the failures by branch
// name. In fail-fast mode the first failure cancels the others and is the only
// one reported.
func (o *Orchestrator) run(ctx context.Context, branches ...branch) map[string]error {
	failures := make(map[string]error)

	if o.opts.FailFast {
		g, gctx := errgroup.WithContext(ctx)
		for _, b := range branches {
			b := b
			g.Go(func() error {
				if err := b.fn(gctx); err != nil {
					return &branchError{name: b.name, err: err}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			var be *branchError
			if errors.As(err, &be) {
				failures[be.name] = be.err
			} else {
				failures["unknown"] = err
			}
		}
		return failures
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, b := range branches {
		b := b
		g.Go(func() error {
			if err := b.fn(ctx); err != nil {
				mu.Lock()
				failures[b.name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

// ByName aggregates the conditions of a city.
func (o *Orchestrator) ByName(ctx context.Context, city, country string) (Result, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Result{}, fmt.Errorf("%w: city is required", common.ErrInvalidInput)
	}
	country = common.CountryOrDefault(country)

	// Rejected queries are never issued and must not supersede one in flight.
	token := o.latest.Add(1)

	var (
		ms  []airquality.Measurement
		rec weather.Record
		adv advisory.Advisory
	)
	failures := o.run(ctx,
		branch{branchAirQuality, func(ctx context.Context) (err error) {
			ms, err = o.air.ByCity(ctx, city, country)
			return err
		}},
		branch{branchWeather, func(ctx context.Context) (err error) {
			rec, err = o.weather.ByCity(ctx, city, country)
			return err
		}},
		branch{branchAdvisory, func(ctx context.Context) (err error) {
			adv, err = o.advisory.Recommendations(ctx, city, country)
			return err
		}},
	)
	if len(failures) > 0 && (o.opts.FailFast || len(failures) == 3) {
		return o.fail(token, modeCity, failures)
	}

	res := Result{Token: token, Failed: failureNames(failures)}
	if _, failed := failures[branchAirQuality]; !failed {
		view := summarize(ms)
		res.AirQuality = &view
	}
	if _, failed := failures[branchWeather]; !failed {
		res.Weather = &rec
		if rec.Latitude != 0 || rec.Longitude != 0 {
			label := rec.City
			if label == "" {
				label = city
			}
			res.Location = &Location{Lat: rec.Latitude, Lng: rec.Longitude, Label: label}
		}
	}
	if _, failed := failures[branchAdvisory]; !failed {
		res.Advisory = &adv
	}

	o.logFailures(token, modeCity, failures)
	return o.complete(token, modeCity, res), nil
}

// ByCoordinates aggregates the conditions around a point. Health guidance is
// fetched after the weather lookup, for the city it resolved.
func (o *Orchestrator) ByCoordinates(ctx context.Context, lat, lng float64) (Result, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Result{}, fmt.Errorf("%w: coordinates out of range", common.ErrInvalidInput)
	}
	token := o.latest.Add(1)

	var (
		ms  []airquality.Measurement
		rec weather.Record
	)
	failures := o.run(ctx,
		branch{branchAirQuality, func(ctx context.Context) (err error) {
			ms, err = o.air.ByCoordinates(ctx, lat, lng, o.opts.Radius)
			return err
		}},
		branch{branchWeather, func(ctx context.Context) (err error) {
			rec, err = o.weather.ByCoordinates(ctx, lat, lng)
			return err
		}},
	)
	if len(failures) > 0 && (o.opts.FailFast || len(failures) == 2) {
		return o.fail(token, modeCoordinates, failures)
	}

	res := Result{Token: token}
	if _, failed := failures[branchAirQuality]; !failed {
		view := summarize(ms)
		res.AirQuality = &view
	}

	label := defaultLabel
	if _, failed := failures[branchWeather]; !failed {
		res.Weather = &rec
		if rec.City != "" {
			label = rec.City

			adv, err := o.advisory.Recommendations(ctx, rec.City, common.CountryOrDefault(rec.Country))
			if err != nil {
				failures[branchAdvisory] = err
				if o.opts.FailFast {
					return o.fail(token, modeCoordinates, failures)
				}
			} else {
				res.Advisory = &adv
			}
		}
	}
	res.Location = &Location{Lat: lat, Lng: lng, Label: label}
	res.Failed = failureNames(failures)

	o.logFailures(token, modeCoordinates, failures)
	return o.complete(token, modeCoordinates, res), nil
}

// complete applies a successful or partial result if its token is still the latest.
func (o *Orchestrator) complete(token uint64, mode string, res Result) Result {
	o.applyMu.Lock()
	if token == o.latest.Load() {
		o.apply(res)
		res.Applied = true
	}
	o.applyMu.Unlock()

	switch {
	case !res.Applied:
		o.logger.Debug().Uint64("token", token).Str("mode", mode).Msg("discarding stale aggregation")
		o.record(mode, "stale")
	case len(res.Failed) > 0:
		o.record(mode, "partial")
	default:
		o.record(mode, "success")
	}
	return res
}

func (o *Orchestrator) apply(res Result) {
	if o.sinks.Batch != nil {
		u := Update{
			AirQuality: res.AirQuality,
			Weather:    res.Weather,
			Advisory:   res.Advisory,
			Location:   res.Location,
		}
		if len(res.Failed) > 0 {
			u.Err = ErrAggregationFailed
		}
		o.sinks.Batch.Apply(u)
		return
	}

	if res.AirQuality != nil && o.sinks.AirQuality != nil {
		o.sinks.AirQuality.UpdateAirQuality(*res.AirQuality)
	}
	if res.Weather != nil && o.sinks.Weather != nil {
		o.sinks.Weather.UpdateWeather(*res.Weather)
	}
	if res.Advisory != nil && o.sinks.Advisory != nil {
		o.sinks.Advisory.UpdateAdvisory(*res.Advisory)
	}
	if res.Location != nil && o.sinks.Map != nil {
		o.sinks.Map.UpdateLocation(*res.Location)
	}
	if len(res.Failed) > 0 {
		o.notify()
	}
}

// fail leaves the data sinks untouched and fires a single error notification.
func (o *Orchestrator) fail(token uint64, mode string, failures map[string]error) (Result, error) {
	o.logFailures(token, mode, failures)

	res := Result{Token: token, Failed: failureNames(failures)}

	o.applyMu.Lock()
	if token == o.latest.Load() {
		o.notify()
		res.Applied = true
	}
	o.applyMu.Unlock()

	if res.Applied {
		o.record(mode, "failed")
	} else {
		o.record(mode, "stale")
	}
	return res, ErrAggregationFailed
}

func (o *Orchestrator) notify() {
	if o.sinks.Errors != nil {
		o.sinks.Errors.NotifyError(ErrAggregationFailed)
	}
}

func (o *Orchestrator) logFailures(token uint64, mode string, failures map[string]error) {
	for _, name := range failureNames(failures) {
		o.logger.Error().
			Err(failures[name]).
			Uint64("token", token).
			Str("mode", mode).
			Str("branch", name).
			Msg("aggregation branch failed")
	}
}

func (o *Orchestrator) record(mode, outcome string) {
	if o.recorder != nil {
		o.recorder.RecordAggregation(mode, outcome)
	}
}

func summarize(ms []airquality.Measurement) AirQualityView {
	view := AirQualityView{Measurements: len(ms)}
	if report, err := airquality.Summarize(ms); err == nil {
		view.Report = &report
	}
	return view
}

func failureNames(failures map[string]error) []string {
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

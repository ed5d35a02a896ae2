package service

import (
	"context"
	"fmt"
	"time"

	chaosEngine "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/engine"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/latency"
	chaosModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/random"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/market/model"
	traceModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	traceService "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/service"
	"go.uber.org/zap"
)

const (
	listDelayMinMs  = 20
	listDelayMaxMs  = 200
	sparklinePoints = 24
	swapFeeBps      = 85
)

// CollectionService is the marketplace collaborator the injection layers
// wrap. Every operation receives its parent span explicitly.
type CollectionService interface {
	ListCollections(
		ctx context.Context,
		trace *traceModel.Trace,
		parent *traceModel.Span,
	) ([]model.Collection, error)
	GetCollection(
		ctx context.Context,
		trace *traceModel.Trace,
		parent *traceModel.Span,
		slug string,
	) (*model.Collection, error)
	QuoteSwap(
		ctx context.Context,
		trace *traceModel.Trace,
		parent *traceModel.Span,
		request model.SwapRequest,
	) (*model.SwapQuote, error)
}

type CollectionServiceImpl struct {
	engine   chaosEngine.FaultDecisionEngine
	latency  latency.LatencySimulator
	recorder traceService.TraceRecorder
	rand     random.Source
	logger   *zap.Logger
}

func NewCollectionServiceImpl(
	decisionEngine chaosEngine.FaultDecisionEngine,
	latencySimulator latency.LatencySimulator,
	recorder traceService.TraceRecorder,
	randSource random.Source,
	logger *zap.Logger,
) *CollectionServiceImpl {
	return &CollectionServiceImpl{
		engine:   decisionEngine,
		latency:  latencySimulator,
		recorder: recorder,
		rand:     randSource,
		logger:   logger,
	}
}

var demoCollections = []model.Collection{
	{Slug: "pixel-punks", Name: "Pixel Punks", FloorPriceEth: 12.4, VolumeEth: 48211.7, ItemCount: 10000, OwnerCount: 5632},
	{Slug: "chain-cats", Name: "Chain Cats", FloorPriceEth: 2.1, VolumeEth: 9033.2, ItemCount: 8888, OwnerCount: 4120},
	{Slug: "meta-villas", Name: "Meta Villas", FloorPriceEth: 0.8, VolumeEth: 1204.5, ItemCount: 4500, OwnerCount: 2011},
	{Slug: "orbit-apes", Name: "Orbit Apes", FloorPriceEth: 31.0, VolumeEth: 150339.9, ItemCount: 10000, OwnerCount: 6402},
}

func (s *CollectionServiceImpl) ListCollections(
	ctx context.Context,
	trace *traceModel.Trace,
	parent *traceModel.Span,
) ([]model.Collection, error) {
	var collections []model.Collection
	err := s.recorder.RunWithSpan(
		trace, parent, "collections.list", traceModel.ServiceListing, nil,
		func(span *traceModel.Span) error {
			if _, _, delayErr := s.latency.Delay(ctx, span, listDelayMinMs, listDelayMaxMs); delayErr != nil {
				return delayErr
			}
			span.SetAttribute("collections.count", fmt.Sprintf("%d", len(demoCollections)))

			collections = make([]model.Collection, len(demoCollections))
			copy(collections, demoCollections)
			for i := range collections {
				sparkline, sparklineErr := s.deriveSparkline(trace, span, collections[i])
				if sparklineErr != nil {
					return sparklineErr
				}
				collections[i].Sparkline = sparkline
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *CollectionServiceImpl) GetCollection(
	ctx context.Context,
	trace *traceModel.Trace,
	parent *traceModel.Span,
	slug string,
) (*model.Collection, error) {
	var collection *model.Collection
	err := s.recorder.RunWithSpan(
		trace, parent, "collections.get", traceModel.ServiceListing,
		map[string]string{"collection.slug": slug},
		func(span *traceModel.Span) error {
			if _, _, delayErr := s.latency.Delay(ctx, span, listDelayMinMs, listDelayMaxMs); delayErr != nil {
				return delayErr
			}
			for _, candidate := range demoCollections {
				if candidate.Slug == slug {
					found := candidate
					sparkline, sparklineErr := s.deriveSparkline(trace, span, found)
					if sparklineErr != nil {
						return sparklineErr
					}
					found.Sparkline = sparkline
					collection = &found
					return nil
				}
			}
			return fmt.Errorf("looking up %q: %w", slug, model.ErrCollectionNotFound)
		},
	)
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *CollectionServiceImpl) QuoteSwap(
	ctx context.Context,
	trace *traceModel.Trace,
	parent *traceModel.Span,
	request model.SwapRequest,
) (*model.SwapQuote, error) {
	var quote *model.SwapQuote
	err := s.recorder.RunWithSpan(
		trace, parent, "swap.quote", traceModel.ServicePricing,
		map[string]string{
			"swap.from_token": request.FromToken,
			"swap.to_token":   request.ToToken,
		},
		func(span *traceModel.Span) error {
			if _, _, delayErr := s.latency.Delay(ctx, span, listDelayMinMs, listDelayMaxMs); delayErr != nil {
				return delayErr
			}
			if injected := s.engine.InjectIfDue(chaosModel.FaultKindUnprocessable, map[string]interface{}{
				"route":      "/swap/quote",
				"from_token": request.FromToken,
				"to_token":   request.ToToken,
			}); injected != nil {
				return injected
			}
			if request.AmountIn <= 0 {
				return fmt.Errorf("swap amount must be positive, got %f", request.AmountIn)
			}

			rate := 1 - float64(swapFeeBps)/10000
			quote = &model.SwapQuote{
				FromToken: request.FromToken,
				ToToken:   request.ToToken,
				AmountIn:  request.AmountIn,
				AmountOut: request.AmountIn * rate,
				FeeBps:    swapFeeBps,
				ExpiresAt: time.Now().UTC().Add(30 * time.Second),
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// deriveSparkline is the sub-function injection boundary: a crash here
// surfaces as an internal error on the enclosing span and bubbles to the
// gateway's error path without being wrapped a second time.
func (s *CollectionServiceImpl) deriveSparkline(
	trace *traceModel.Trace,
	parent *traceModel.Span,
	collection model.Collection,
) ([]float64, error) {
	var sparkline []float64
	err := s.recorder.RunWithSpan(
		trace, parent, "collections.sparkline", traceModel.ServicePricing,
		map[string]string{"collection.slug": collection.Slug},
		func(span *traceModel.Span) error {
			if injected := s.engine.InjectIfDue(chaosModel.FaultKindSubfunctionCrash, map[string]interface{}{
				"collection": collection.Slug,
			}); injected != nil {
				return injected
			}
			sparkline = make([]float64, sparklinePoints)
			for i := range sparkline {
				flutter := float64(s.rand.IntN(200)-100) / 1000
				sparkline[i] = collection.FloorPriceEth * (1 + flutter)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return sparkline, nil
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

// RouterName is always the first entry of agents_invoked.
const RouterName = "lore_router"

// userSafeFailureMessage is the only text a caller sees when both the
// primary handler and the retrieval fallback fail. Raw error detail stays in
// the invocation metadata and the log.
const userSafeFailureMessage = "I could not answer that question right now. Please try again or rephrase it."

// Handler is the single contract every specialized handler implements.
// Handlers are stateless; they must not retain request state across calls.
type Handler interface {
	Name() string
	Invoke(ctx context.Context, req domain.AgentRequest) (domain.HandlerResult, error)
}

// Router drives the request lifecycle: classify, dispatch through a static
// routing table, invoke one primary handler, fall back to retrieval exactly
// once on failure, then aggregate metadata. UNKNOWN intent routes to
// retrieval by design, not by accident.
type Router struct {
	classifier *Classifier
	routes     map[domain.Intent]Handler
	fallback   Handler
	observer   RouterObserver
}

// RouterObserver receives routing outcomes for metrics. A nil observer is
// valid.
type RouterObserver interface {
	RouteCompleted(intent domain.Intent, status string, fallbackUsed bool, duration time.Duration)
}

func NewRouter(classifier *Classifier, retrieval, hypothesis, knowledge Handler, observer RouterObserver) *Router {
	return &Router{
		classifier: classifier,
		routes: map[domain.Intent]Handler{
			domain.IntentRetrieval:           retrieval,
			domain.IntentHypothesis:          hypothesis,
			domain.IntentKnowledgeManagement: knowledge,
			domain.IntentUnknown:             retrieval,
		},
		fallback: retrieval,
		observer: observer,
	}
}

func (r *Router) Invoke(ctx context.Context, req domain.AgentRequest) (*domain.AgentInvocationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	intent := r.classifier.Classify(req.Query)
	primary := r.routes[intent]
	if primary == nil {
		primary = r.fallback
	}

	meta := domain.InvocationMetadata{
		AgentsInvoked: []string{RouterName},
		Intent:        intent,
	}

	result, err := primary.Invoke(ctx, req)
	if err != nil {
		slog.Warn("primary handler failed, falling back to retrieval",
			"intent", intent.String(),
			"handler", primary.Name(),
			"error", err,
		)
		meta.FallbackUsed = true
		meta.ErrorDetail = err.Error()
		meta.AgentsInvoked = append(meta.AgentsInvoked, primary.Name())

		fallbackResult, fallbackErr := r.fallback.Invoke(ctx, req)
		if fallbackErr != nil {
			exhausted := domain.WrapError(domain.ErrRouterExhausted, "route request",
				fmt.Errorf("primary %s: %w; fallback %s: %w", primary.Name(), err, r.fallback.Name(), fallbackErr))
			slog.Error("router exhausted", "intent", intent.String(), "error", exhausted)

			meta.AgentsInvoked = append(meta.AgentsInvoked, r.fallback.Name())
			meta.ErrorDetail = exhausted.Error()
			meta.ProcessingTimeMs = time.Since(start).Milliseconds()
			r.observe(intent, "exhausted", true, time.Since(start))
			return &domain.AgentInvocationResult{
				Content:  userSafeFailureMessage,
				Metadata: meta,
			}, nil
		}
		result = fallbackResult
		meta.AgentsInvoked = append(meta.AgentsInvoked, fallbackResult.AgentsInvoked...)
	} else {
		meta.AgentsInvoked = append(meta.AgentsInvoked, result.AgentsInvoked...)
		if companion := r.companionFor(intent, req.Query); companion != nil {
			result = r.invokeCompanion(ctx, req, result, companion, &meta)
		}
	}

	meta.ToolsUsed = result.ToolsUsed
	meta.ProcessingTimeMs = time.Since(start).Milliseconds()

	status := "ok"
	if meta.FallbackUsed {
		status = "fallback"
	}
	r.observe(intent, status, meta.FallbackUsed, time.Since(start))

	return &domain.AgentInvocationResult{
		Content:   result.Content,
		Citations: dedupCitations(result.Citations),
		Metadata:  meta,
	}, nil
}

// companionFor detects composite questions that legitimately need both
// knowledge extraction and retrieval ("show me my notes and tell me about
// the siege"). Only the knowledge intent gets a retrieval companion.
func (r *Router) companionFor(intent domain.Intent, query string) Handler {
	if intent != domain.IntentKnowledgeManagement {
		return nil
	}
	if !r.classifier.MatchesRetrieval(query) {
		return nil
	}
	return r.routes[domain.IntentRetrieval]
}

// invokeCompanion runs the companion best-effort and concatenates outputs
// with labeled section breaks. Companion failure never fails the request.
func (r *Router) invokeCompanion(
	ctx context.Context,
	req domain.AgentRequest,
	primary domain.HandlerResult,
	companion Handler,
	meta *domain.InvocationMetadata,
) domain.HandlerResult {
	companionResult, err := companion.Invoke(ctx, req)
	if err != nil {
		slog.Warn("companion handler skipped", "handler", companion.Name(), "error", err)
		return primary
	}

	meta.AgentsInvoked = append(meta.AgentsInvoked, companionResult.AgentsInvoked...)

	merged := domain.HandlerResult{
		Content: fmt.Sprintf("## %s\n\n%s\n\n## %s\n\n%s",
			sectionTitle(primary.AgentsInvoked), primary.Content,
			sectionTitle(companionResult.AgentsInvoked), companionResult.Content),
		Citations:     append(append([]domain.Citation{}, primary.Citations...), companionResult.Citations...),
		AgentsInvoked: primary.AgentsInvoked,
		ToolsUsed:     unionStrings(primary.ToolsUsed, companionResult.ToolsUsed),
	}
	return merged
}

func sectionTitle(agents []string) string {
	if len(agents) == 0 {
		return "Response"
	}
	name := strings.ReplaceAll(agents[0], "_", " ")
	return strings.ToUpper(name[:1]) + name[1:]
}

// dedupCitations removes exact duplicates (same passage address) while
// preserving order. No fuzzy merging beyond that.
func dedupCitations(citations []domain.Citation) []domain.Citation {
	if len(citations) < 2 {
		return citations
	}
	seen := make(map[string]struct{}, len(citations))
	out := make([]domain.Citation, 0, len(citations))
	for _, c := range citations {
		ref := c.Ref()
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, c)
	}
	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (r *Router) observe(intent domain.Intent, status string, fallbackUsed bool, duration time.Duration) {
	if r.observer == nil {
		return
	}
	r.observer.RouteCompleted(intent, status, fallbackUsed, duration)
}

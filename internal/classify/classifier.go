package classify

import (
	"context"
	"fmt"

	"github.com/shinji-kodama/vestige/internal/model"
)

// Classifier scores a piece of text as natural language or commented-out code.
// Implementations must be safe to call repeatedly from one goroutine; the
// result must depend only on the input text.
type Classifier interface {
	Predict(ctx context.Context, text string) (model.Distribution, error)
}

// ConcurrencySafe is implemented by classifiers that may be called from
// several goroutines at once. The cleaner only processes files in parallel
// when the classifier reports true.
type ConcurrencySafe interface {
	ConcurrencySafe() bool
}

// IsConcurrencySafe reports whether c declares itself safe for concurrent use.
func IsConcurrencySafe(c Classifier) bool {
	cs, ok := c.(ConcurrencySafe)
	return ok && cs.ConcurrencySafe()
}

// Func adapts a labeling function to the Classifier interface. The returned
// distribution is one-hot on the label.
type Func func(text string) model.Label

// Predict implements Classifier.
func (f Func) Predict(_ context.Context, text string) (model.Distribution, error) {
	return OneHot(f(text)), nil
}

// OneHot returns a distribution with all mass on label.
func OneHot(label model.Label) model.Distribution {
	var d model.Distribution
	if label == model.Code {
		d[model.Code] = 1
	} else {
		d[model.NotCode] = 1
	}
	return d
}

// Decide classifies text and reduces the distribution to a label by argmax.
func Decide(ctx context.Context, c Classifier, text string) (model.Label, error) {
	if err := ctx.Err(); err != nil {
		return model.NotCode, err
	}
	dist, err := c.Predict(ctx, text)
	if err != nil {
		return model.NotCode, fmt.Errorf("classify %q: %w", text, err)
	}
	return dist.Argmax(), nil
}

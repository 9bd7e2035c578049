package cli

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
)

// AI runs summary or grammar assist on the active post and prints the answer
// as it is revealed.
func (a *App) AI(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: ai summary|grammar")
		return nil
	}
	mode, err := models.ParseAIMode(args[0])
	if err != nil {
		return err
	}

	before := a.store.AIPanel()

	var mu sync.Mutex
	session, printed := before.Session, len(before.Result)
	wrote := false
	unsubscribe := a.store.Subscribe(func(st models.State) {
		mu.Lock()
		defer mu.Unlock()
		if st.AIPanel.Session != session {
			session, printed = st.AIPanel.Session, 0
		}
		if len(st.AIPanel.Result) > printed {
			a.printf("%s", st.AIPanel.Result[printed:])
			printed = len(st.AIPanel.Result)
			wrote = true
		}
	})

	err = a.ai.Run(ctx, mode)
	unsubscribe()

	mu.Lock()
	if wrote {
		a.printf("\n")
	}
	mu.Unlock()

	// An upstream failure was already shown as part of the answer.
	if err != nil && a.store.AIPanel().Session != before.Session {
		return nil
	}
	return err
}

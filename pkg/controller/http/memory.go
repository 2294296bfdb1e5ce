package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oneiro-lab/morpheus/pkg/domain/model"
	"github.com/oneiro-lab/morpheus/pkg/domain/types"
	"github.com/oneiro-lab/morpheus/pkg/usecase"
	"github.com/oneiro-lab/morpheus/pkg/utils/errutil"
)

// addMemoryHandler runs the full create pipeline. A failure in the generate
// or persist stage maps to HTTP 500 carrying the outcome's message; input
// errors never reach the core.
func addMemoryHandler(memories *usecase.Memories) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input model.MemoryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
		if err := input.Validate(); err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		out := memories.Create(ctx, &input)
		if !out.Success {
			writeJSON(w, http.StatusInternalServerError, out)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMemoryHandler returns the outcome envelope as-is: a not-found lookup is
// a success-shaped response with success=false, not a 404.
func getMemoryHandler(memories *usecase.Memories) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := memoryIDFromRequest(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, memories.Get(r.Context(), id))
	}
}

func updateMemoryHandler(memories *usecase.Memories) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := memoryIDFromRequest(w, r)
		if !ok {
			return
		}

		var patch model.MemoryPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, memories.Update(ctx, id, &patch))
	}
}

func deleteMemoryHandler(memories *usecase.Memories) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := memoryIDFromRequest(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, memories.Delete(r.Context(), id))
	}
}

func memoryIDFromRequest(w http.ResponseWriter, r *http.Request) (types.MemoryID, bool) {
	id, err := types.ParseMemoryID(chi.URLParam(r, "id"))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid memory ID"), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

package board

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zouxu09/goban/internal/bootstrap"
	"github.com/zouxu09/goban/internal/domain/goban"
	"github.com/zouxu09/goban/internal/domain/position"
	"github.com/zouxu09/goban/internal/httpresponse"
	boarduc "github.com/zouxu09/goban/internal/usecase/board"
	"github.com/zouxu09/goban/internal/utils"
)

type BoardHandler struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	boardUC *boarduc.BoardUseCase
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewBoardHandler(cfg bootstrap.Config, log *zap.SugaredLogger, boardUC *boarduc.BoardUseCase) *BoardHandler {
	return &BoardHandler{
		cfg:     cfg,
		log:     log,
		boardUC: boardUC,
	}
}

func (b *BoardHandler) Routes(r chi.Router) {
	r.Route("/boards", func(r chi.Router) {
		r.Post("/", b.HandleCreateBoard)
		r.Post("/import", b.HandleImportBoard)
		r.Post("/import/sgf", b.HandleImportSGF)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", b.HandleGetBoard)
			r.Delete("/", b.HandleDeleteBoard)
			r.Post("/stones", b.HandlePlaceStones)
			r.Get("/stones", b.HandleGetStones)
			r.Get("/neighbors", b.HandleGetNeighbors)
			r.Get("/liberties", b.HandleGetLiberties)
			r.Get("/render", b.HandleRender)
			r.Get("/sgf", b.HandleExportSGF)
			r.Post("/archive", b.HandleArchive)
			r.Get("/play", b.HandlePlay)
		})
	})
	r.Get("/positions/{hash}", b.HandleFindPositions)
}

func (b *BoardHandler) HandleCreateBoard(w http.ResponseWriter, r *http.Request) {
	req := position.CreateBoardRequest{Size: b.cfg.DefaultBoardSize}
	if r.ContentLength != 0 {
		if err := utils.DecodeJSONRequest(r, &req); err != nil {
			b.log.Error("JSON decode error:", err)
			httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
			return
		}
	}

	resp, err := b.boardUC.CreateBoard(r.Context(), req.Size)
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, resp)
}

func (b *BoardHandler) HandleImportBoard(w http.ResponseWriter, r *http.Request) {
	var req position.ImportBoardRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		b.log.Error("JSON decode error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}

	resp, err := b.boardUC.ImportBoard(r.Context(), req.Colors, req.Order)
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, resp)
}

func (b *BoardHandler) HandleImportSGF(w http.ResponseWriter, r *http.Request) {
	text, err := utils.ReadTextRequest(r)
	if err != nil {
		b.log.Error("read body error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}

	resp, err := b.boardUC.ImportSGF(r.Context(), text)
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, resp)
}

func (b *BoardHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	resp, err := b.boardUC.GetBoard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (b *BoardHandler) HandleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := b.boardUC.DeleteBoard(r.Context(), chi.URLParam(r, "id")); err != nil {
		b.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *BoardHandler) HandlePlaceStones(w http.ResponseWriter, r *http.Request) {
	var req position.PlaceStonesRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		b.log.Error("JSON decode error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}

	resp, err := b.boardUC.PlaceStones(r.Context(), chi.URLParam(r, "id"), req.Stones, req.RejectRepeats)
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (b *BoardHandler) HandleGetStones(w http.ResponseWriter, r *http.Request) {
	var filter *goban.Color
	if raw := r.URL.Query().Get("color"); raw != "" {
		color, err := goban.ParseColor(raw)
		if err != nil {
			httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
			return
		}
		filter = &color
	}

	stones, err := b.boardUC.Stones(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, position.StonesResponse{Stones: stones})
}

func (b *BoardHandler) HandleGetNeighbors(w http.ResponseWriter, r *http.Request) {
	c, err := coordFromQuery(r)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}
	stonesOnly := r.URL.Query().Get("stones_only") == "true"

	stones, err := b.boardUC.Neighbors(r.Context(), chi.URLParam(r, "id"), c, stonesOnly)
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, position.StonesResponse{Stones: stones})
}

func (b *BoardHandler) HandleGetLiberties(w http.ResponseWriter, r *http.Request) {
	c, err := coordFromQuery(r)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}
	color, err := goban.ParseColor(r.URL.Query().Get("color"))
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}

	resp, err := b.boardUC.Liberties(r.Context(), chi.URLParam(r, "id"), goban.Stone{Coord: c, Color: color})
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (b *BoardHandler) HandleRender(w http.ResponseWriter, r *http.Request) {
	pretty := r.URL.Query().Get("pretty") == "true"
	diagram, err := b.boardUC.Render(r.Context(), chi.URLParam(r, "id"), pretty)
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteText(w, http.StatusOK, diagram)
}

func (b *BoardHandler) HandleExportSGF(w http.ResponseWriter, r *http.Request) {
	text, err := b.boardUC.ExportSGF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		b.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-go-sgf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (b *BoardHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	archived, err := b.boardUC.ArchiveBoard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, archived)
}

func (b *BoardHandler) HandleFindPositions(w http.ResponseWriter, r *http.Request) {
	found, err := b.boardUC.FindArchived(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		b.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, position.ArchiveResponse{Positions: found})
}

type playError struct {
	Error string `json:"error"`
}

// HandlePlay reads placements from a websocket and answers each one with
// the updated board.
func (b *BoardHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	boardID := chi.URLParam(r, "id")

	if _, err := b.boardUC.GetBoard(ctx, boardID); err != nil {
		b.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Errorf("websocket upgrade for board %s: %v", boardID, err)
		return
	}
	defer conn.Close()

	for {
		var req position.PlaceStonesRequest
		if err = conn.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.log.Infof("player left board %s", boardID)
			} else {
				b.log.Warnw("websocket read failed", "board", boardID, "error", err)
			}
			return
		}

		resp, err := b.boardUC.PlaceStones(ctx, boardID, req.Stones, req.RejectRepeats)
		if err != nil {
			if httpresponse.StatusFor(err) == http.StatusInternalServerError {
				b.log.Errorf("place stones on board %s: %v", boardID, err)
			}
			if err = conn.WriteJSON(playError{Error: err.Error()}); err != nil {
				return
			}
			continue
		}
		if err = conn.WriteJSON(resp); err != nil {
			b.log.Warnw("websocket write failed", "board", boardID, "error", err)
			return
		}
	}
}

func (b *BoardHandler) writeError(w http.ResponseWriter, err error) {
	if httpresponse.StatusFor(err) == http.StatusInternalServerError {
		b.log.Error(err)
	}
	httpresponse.WriteError(w, err)
}

var errMissingCoord = errors.New("row and col query parameters are required")

func coordFromQuery(r *http.Request) (goban.Coord, error) {
	q := r.URL.Query()
	if q.Get("row") == "" || q.Get("col") == "" {
		return goban.Coord{}, errMissingCoord
	}
	row, err := strconv.Atoi(q.Get("row"))
	if err != nil {
		return goban.Coord{}, err
	}
	col, err := strconv.Atoi(q.Get("col"))
	if err != nil {
		return goban.Coord{}, err
	}
	return goban.Coord{Row: row, Col: col}, nil
}

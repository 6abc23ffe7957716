package rpc

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"assembly/crypto"
)

func addressParam(w http.ResponseWriter, r *http.Request, name string) (crypto.Address, bool) {
	addr, err := crypto.DecodeAddress(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidParams, "invalid "+name, err.Error())
		return crypto.Address{}, false
	}
	return addr, true
}

func (s *Server) getProgram(w http.ResponseWriter, r *http.Request) {
	programs := s.exec.Programs()
	writeResult(w, ProgramResponse{
		ProgramID:              s.exec.ProgramID(),
		TokenProgramID:         programs.Token,
		AssociatedTokenProgram: programs.AssociatedToken,
		Now:                    s.exec.Clock().Now().Unix(),
	})
}

func (s *Server) listDistributors(w http.ResponseWriter, r *http.Request) {
	list, err := s.exec.Distributors()
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, list)
}

func (s *Server) getDistributor(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	view, err := s.exec.Distributor(addr)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, view)
}

func (s *Server) listGrants(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	if _, err := s.exec.Distributor(addr); err != nil {
		writeQueryError(w, err)
		return
	}
	grants, err := s.exec.Grants(addr)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, grants)
}

func (s *Server) getGrantFor(w http.ResponseWriter, r *http.Request) {
	distributor, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	recipient, ok := addressParam(w, r, "recipient")
	if !ok {
		return
	}
	view, err := s.exec.GrantFor(distributor, recipient)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, view)
}

func (s *Server) getGrant(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	view, err := s.exec.Grant(addr)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, view)
}

func (s *Server) getTokenAccount(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	acc, err := s.exec.TokenAccount(addr)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, acc)
}

func (s *Server) getMint(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	mint, err := s.exec.Mint(addr)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, mint)
}

func (s *Server) getAssociatedAddress(w http.ResponseWriter, r *http.Request) {
	owner, ok := addressParam(w, r, "owner")
	if !ok {
		return
	}
	mint, ok := addressParam(w, r, "mint")
	if !ok {
		return
	}
	addr, err := s.exec.AssociatedAddress(owner, mint)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, AddressResponse{Address: addr})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidParams, "limit must be a positive integer", raw)
			return
		}
		limit = n
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	writeResult(w, EventsResponse{Events: s.events.Recent(limit)})
}

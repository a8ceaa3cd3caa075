package system

import (
	"fmt"

	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/portal"
	"github.com/milk9111/portalcore/tilegrid"
	log "github.com/sirupsen/logrus"
)

// PortalGunSystem consumes fire and clear request entities. A fire request
// runs the placement search; on success the collision zones are updated
// before the portal moves and PortalOpenedEvent is published.
type PortalGunSystem struct {
	pair   *portal.Pair
	search portal.Searcher
	zones  *portal.CollisionZones
	log    *log.Entry
}

func NewPortalGunSystem(pair *portal.Pair, search portal.Searcher, zones *portal.CollisionZones) (*PortalGunSystem, error) {
	if pair == nil || search == nil || zones == nil {
		return nil, fmt.Errorf("portal gun: missing pair, search or zones")
	}
	if err := pair.Validate(); err != nil {
		return nil, fmt.Errorf("portal gun: %w", err)
	}
	return &PortalGunSystem{
		pair:   pair,
		search: search,
		zones:  zones,
		log:    log.WithField("system", "portal_gun"),
	}, nil
}

// SetSearch swaps the placement strategy.
func (s *PortalGunSystem) SetSearch(search portal.Searcher) {
	if s == nil || search == nil {
		return
	}
	s.search = search
}

func (s *PortalGunSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	for _, e := range w.Query(component.PortalClearRequestComponent.Kind()) {
		ecs.DestroyEntity(w, e)
		s.clear(w)
	}

	for _, e := range w.Query(component.PortalFireRequestComponent.Kind()) {
		req, ok := ecs.Get(w, e, component.PortalFireRequestComponent.Kind())
		if !ok {
			continue
		}
		fire := *req
		ecs.DestroyEntity(w, e)
		s.fire(w, fire)
	}
}

func (s *PortalGunSystem) fire(w *ecs.World, req component.PortalFireRequest) {
	end := s.pair.Get(req.Color)
	if end == nil {
		s.log.WithField("color", req.Color).Warn("fire unknown portal color")
		return
	}

	dir := req.Direction.Normalize()
	pl := s.search.OpenPortal(geom.Ray{Origin: req.Origin, Direction: dir}, req.Color)
	if !pl.Ok() {
		s.log.WithFields(log.Fields{"color": req.Color, "origin": req.Origin, "direction": dir}).Debug("no portal placement")
		ecs.Publish(w.Events(), PlacementFailedEvent{Color: req.Color, Aim: dir})
		return
	}

	s.zones.Place(req.Color, pl)
	end.Open(pl)

	s.log.WithFields(log.Fields{"color": req.Color, "position": pl.Position, "orientation": pl.Orientation, "cells": len(pl.Cells)}).Info("open portal")
	ecs.Publish(w.Events(), PortalOpenedEvent{
		Color:       req.Color,
		Position:    pl.Position,
		Orientation: pl.Orientation,
		Cells:       append([]tilegrid.Cell(nil), pl.Cells...),
	})
}

func (s *PortalGunSystem) clear(w *ecs.World) {
	s.zones.Clear()
	s.pair.Clear()
	s.log.Info("clear portal pair")
	ecs.Publish(w.Events(), PortalPairClearedEvent{})
}

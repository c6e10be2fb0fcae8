// Package snapshot persists the coordinator's in-memory state to a
// SQLite file so a restart resumes where the previous process stopped.
// The snapshot is written as a whole: every table is truncated and
// refilled inside one transaction.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fixmarket/backend/internal/domain/contact"
	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/relay"
	"github.com/fixmarket/backend/internal/domain/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Snapshot is the full coordinator state
type Snapshot struct {
	Participants  []identity.Participant
	Orders        []order.Order
	NextOrderID   int64
	Links         []relay.Link
	Reveals       []relay.RevealState
	Contacts      []contact.Request
	NextContactID int64
}

// Store reads and writes snapshots through GORM
type Store struct {
	db *gorm.DB
}

// New opens (or creates) the snapshot database and migrates its schema
func New(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	if err := db.AutoMigrate(
		&participantRecord{},
		&orderRecord{},
		&linkRecord{},
		&revealRecord{},
		&contactRecord{},
		&sequenceRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save overwrites the stored snapshot
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&participantRecord{}, &orderRecord{}, &linkRecord{},
			&revealRecord{}, &contactRecord{}, &sequenceRecord{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		for _, p := range snap.Participants {
			if err := tx.Create(participantToRecord(p)).Error; err != nil {
				return err
			}
		}
		for _, o := range snap.Orders {
			rec, err := orderToRecord(o)
			if err != nil {
				return err
			}
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
		}
		for _, l := range snap.Links {
			if err := tx.Create(linkToRecord(l)).Error; err != nil {
				return err
			}
		}
		for _, rv := range snap.Reveals {
			rec, err := revealToRecord(rv)
			if err != nil {
				return err
			}
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
		}
		for _, c := range snap.Contacts {
			if err := tx.Create(contactToRecord(c)).Error; err != nil {
				return err
			}
		}

		sequences := []sequenceRecord{
			{Name: "orders", Next: snap.NextOrderID},
			{Name: "contacts", Next: snap.NextContactID},
		}
		for _, seq := range sequences {
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads the stored snapshot
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{NextOrderID: 1, NextContactID: 1}
	db := s.db.WithContext(ctx)

	var participants []participantRecord
	if err := db.Find(&participants).Error; err != nil {
		return nil, err
	}
	for _, rec := range participants {
		snap.Participants = append(snap.Participants, recordToParticipant(rec))
	}

	var orders []orderRecord
	if err := db.Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, rec := range orders {
		o, err := recordToOrder(rec)
		if err != nil {
			return nil, err
		}
		snap.Orders = append(snap.Orders, o)
	}

	var links []linkRecord
	if err := db.Find(&links).Error; err != nil {
		return nil, err
	}
	for _, rec := range links {
		snap.Links = append(snap.Links, recordToLink(rec))
	}

	var reveals []revealRecord
	if err := db.Find(&reveals).Error; err != nil {
		return nil, err
	}
	for _, rec := range reveals {
		rv, err := recordToReveal(rec)
		if err != nil {
			return nil, err
		}
		snap.Reveals = append(snap.Reveals, rv)
	}

	var contacts []contactRecord
	if err := db.Find(&contacts).Error; err != nil {
		return nil, err
	}
	for _, rec := range contacts {
		snap.Contacts = append(snap.Contacts, recordToContact(rec))
	}

	var sequences []sequenceRecord
	if err := db.Find(&sequences).Error; err != nil {
		return nil, err
	}
	for _, seq := range sequences {
		switch seq.Name {
		case "orders":
			snap.NextOrderID = seq.Next
		case "contacts":
			snap.NextContactID = seq.Next
		}
	}

	return snap, nil
}

type participantRecord struct {
	ID           string `gorm:"primaryKey"`
	Handle       string
	DisplayName  string
	Role         string
	Availability string
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (participantRecord) TableName() string { return "participants" }

type orderRecord struct {
	ID               int64 `gorm:"primaryKey"`
	CustomerID       string
	Description      string
	ScheduledAt      *time.Time
	Address          string
	Lat              *float64
	Lon              *float64
	AttachmentCount  int
	Status           string
	Bids             string // JSON
	ChosenExecutorID string
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (orderRecord) TableName() string { return "orders" }

type linkRecord struct {
	ParticipantID string `gorm:"primaryKey"`
	PeerID        string
	OrderID       int64
	EstablishedAt time.Time
}

func (linkRecord) TableName() string { return "relay_links" }

type revealRecord struct {
	OrderID          int64 `gorm:"primaryKey"`
	CustomerID       string
	ExecutorID       string
	Requested        string // JSON
	OperatorOverride bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (revealRecord) TableName() string { return "reveal_states" }

type contactRecord struct {
	ID            int64 `gorm:"primaryKey"`
	RequesterID   string
	RequesterName string
	Phone         string
	Source        string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (contactRecord) TableName() string { return "contact_requests" }

type sequenceRecord struct {
	Name string `gorm:"primaryKey"`
	Next int64
}

func (sequenceRecord) TableName() string { return "sequences" }

func participantToRecord(p identity.Participant) *participantRecord {
	return &participantRecord{
		ID:           p.ID,
		Handle:       p.Handle,
		DisplayName:  p.DisplayName,
		Role:         p.Role.String(),
		Availability: p.Availability,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func recordToParticipant(rec participantRecord) identity.Participant {
	return identity.Participant{
		AggregateRoot: shared.AggregateRoot{Version: rec.Version},
		ID:            rec.ID,
		Handle:        rec.Handle,
		DisplayName:   rec.DisplayName,
		Role:          identity.Role(rec.Role),
		Availability:  rec.Availability,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func orderToRecord(o order.Order) (*orderRecord, error) {
	bids, err := json.Marshal(o.Bids)
	if err != nil {
		return nil, err
	}

	rec := &orderRecord{
		ID:               o.ID,
		CustomerID:       o.CustomerID,
		Description:      o.Description,
		ScheduledAt:      o.ScheduledAt,
		Address:          o.Location.Address(),
		AttachmentCount:  o.AttachmentCount,
		Status:           o.Status.String(),
		Bids:             string(bids),
		ChosenExecutorID: o.ChosenExecutorID,
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if coords := o.Location.Coordinates(); coords != nil {
		rec.Lat, rec.Lon = &coords.Lat, &coords.Lon
	}
	return rec, nil
}

func recordToOrder(rec orderRecord) (order.Order, error) {
	var bids []order.Bid
	if rec.Bids != "" {
		if err := json.Unmarshal([]byte(rec.Bids), &bids); err != nil {
			return order.Order{}, err
		}
	}

	var loc order.Location
	if rec.Lat != nil && rec.Lon != nil {
		loc = order.NewGeoLocation(*rec.Lat, *rec.Lon)
	} else {
		var err error
		loc, err = order.NewAddressLocation(rec.Address)
		if err != nil {
			return order.Order{}, err
		}
	}

	return order.Order{
		AggregateRoot:    shared.AggregateRoot{Version: rec.Version},
		ID:               rec.ID,
		CustomerID:       rec.CustomerID,
		Description:      rec.Description,
		ScheduledAt:      rec.ScheduledAt,
		Location:         loc,
		AttachmentCount:  rec.AttachmentCount,
		Status:           order.Status(rec.Status),
		Bids:             bids,
		ChosenExecutorID: rec.ChosenExecutorID,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}, nil
}

func linkToRecord(l relay.Link) *linkRecord {
	return &linkRecord{
		ParticipantID: l.ParticipantID,
		PeerID:        l.PeerID,
		OrderID:       l.OrderID,
		EstablishedAt: l.EstablishedAt,
	}
}

func recordToLink(rec linkRecord) relay.Link {
	return relay.Link{
		ParticipantID: rec.ParticipantID,
		PeerID:        rec.PeerID,
		OrderID:       rec.OrderID,
		EstablishedAt: rec.EstablishedAt,
	}
}

func revealToRecord(rv relay.RevealState) (*revealRecord, error) {
	requested, err := json.Marshal(rv.Requested)
	if err != nil {
		return nil, err
	}
	return &revealRecord{
		OrderID:          rv.OrderID,
		CustomerID:       rv.CustomerID,
		ExecutorID:       rv.ExecutorID,
		Requested:        string(requested),
		OperatorOverride: rv.OperatorOverride,
		CreatedAt:        rv.CreatedAt,
		UpdatedAt:        rv.UpdatedAt,
	}, nil
}

func recordToReveal(rec revealRecord) (relay.RevealState, error) {
	requested := make(map[string]bool)
	if rec.Requested != "" {
		if err := json.Unmarshal([]byte(rec.Requested), &requested); err != nil {
			return relay.RevealState{}, err
		}
	}
	return relay.RevealState{
		OrderID:          rec.OrderID,
		CustomerID:       rec.CustomerID,
		ExecutorID:       rec.ExecutorID,
		Requested:        requested,
		OperatorOverride: rec.OperatorOverride,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}, nil
}

func contactToRecord(c contact.Request) *contactRecord {
	return &contactRecord{
		ID:            c.ID,
		RequesterID:   c.RequesterID,
		RequesterName: c.RequesterName,
		Phone:         c.Phone,
		Source:        string(c.Source),
		Status:        c.Status.String(),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func recordToContact(rec contactRecord) contact.Request {
	return contact.Request{
		ID:            rec.ID,
		RequesterID:   rec.RequesterID,
		RequesterName: rec.RequesterName,
		Phone:         rec.Phone,
		Source:        contact.Source(rec.Source),
		Status:        contact.Status(rec.Status),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

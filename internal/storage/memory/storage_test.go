package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mcoot/userdata-go/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func pendingLink(gcid, dcid string) *model.Link {
	return &model.Link{
		GCID:      gcid,
		DCID:      dcid,
		State:     model.LinkStatePending,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *StorageSuite) TestSaveAndGetLink() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, pendingLink("g1", "d1")))

	link, err := s.storage.GetLink(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal("d1", link.DCID)
	s.Equal(model.LinkStatePending, link.State)
}

func (s *StorageSuite) TestGetLinkNotFound() {
	_, err := s.storage.GetLink(s.ctx, "missing")
	s.ErrorIs(err, model.ErrLinkNotFound)
}

func (s *StorageSuite) TestReturnedLinkIsACopy() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, pendingLink("g1", "d1")))

	link, _ := s.storage.GetLink(s.ctx, "g1")
	link.State = model.LinkStateActive

	again, _ := s.storage.GetLink(s.ctx, "g1")
	s.Equal(model.LinkStatePending, again.State)
}

func (s *StorageSuite) TestGetLinkByDCID() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, pendingLink("g1", "d1")))

	link, err := s.storage.GetLinkByDCID(s.ctx, "d1")
	s.Require().NoError(err)
	s.Equal("g1", link.GCID)

	exists, err := s.storage.DCIDExists(s.ctx, "d1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestDeleteLinkDropsIndex() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, pendingLink("g1", "d1")))
	s.Require().NoError(s.storage.DeleteLink(s.ctx, "g1"))

	exists, _ := s.storage.LinkExists(s.ctx, "g1")
	s.False(exists)
	_, err := s.storage.GetLinkByDCID(s.ctx, "d1")
	s.ErrorIs(err, model.ErrLinkNotFound)
}

func (s *StorageSuite) TestResaveWithNewDCIDMovesIndex() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, pendingLink("g1", "d1")))
	s.Require().NoError(s.storage.SaveLink(s.ctx, pendingLink("g1", "d2")))

	exists, _ := s.storage.DCIDExists(s.ctx, "d1")
	s.False(exists)
	link, err := s.storage.GetLinkByDCID(s.ctx, "d2")
	s.Require().NoError(err)
	s.Equal("g1", link.GCID)
}

func (s *StorageSuite) TestUpdateLinkAppliesChange() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, pendingLink("g1", "d1")))

	link, err := s.storage.UpdateLink(s.ctx, "g1", func(l *model.Link) error {
		l.State = model.LinkStateActive
		l.Name = "Alice"
		return nil
	})
	s.Require().NoError(err)
	s.Equal("Alice", link.Name)

	stored, err := s.storage.GetLink(s.ctx, "g1")
	s.Require().NoError(err)
	s.True(stored.IsActive())
}

func (s *StorageSuite) TestUpdateLinkAbortsOnError() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, pendingLink("g1", "d1")))
	stop := errors.New("stop")

	_, err := s.storage.UpdateLink(s.ctx, "g1", func(l *model.Link) error {
		l.Name = "Alice"
		return stop
	})
	s.ErrorIs(err, stop)

	stored, _ := s.storage.GetLink(s.ctx, "g1")
	s.Empty(stored.Name)
}

func (s *StorageSuite) TestUpdateLinkNotFound() {
	_, err := s.storage.UpdateLink(s.ctx, "missing", func(*model.Link) error { return nil })
	s.ErrorIs(err, model.ErrLinkNotFound)
}

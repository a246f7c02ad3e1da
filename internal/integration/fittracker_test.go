//go:build integration

package integration

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fittracker/internal/fitness/client"
	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/users"
)

func (s *IntegrationTestSuite) TestUsers() {
	roster, err := s.client.ListUsers(context.Background())
	s.Require().NoError(err)
	s.Require().Len(roster, 3)
	s.Equal("Ana", roster[0].Name)
	s.Equal("Ben", roster[1].Name)
	s.Equal("Cleo", roster[2].Name)
}

func (s *IntegrationTestSuite) TestEntries_AddListDelete() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	olderID, err := s.client.CreateRecord(ctx, records.NewRepsRecord("ana", 20, 15, now.Add(-2*time.Hour)))
	s.Require().NoError(err)
	newerID, err := s.client.CreateRecord(ctx, records.NewRepsRecord("ana", 30, 25, now))
	s.Require().NoError(err)

	recs, err := s.client.ListRecords(ctx, "ana", records.ModalityCount)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(newerID, recs[0].ID)
	s.Equal(records.Reps{Situps: 30, Pushups: 25}, recs[0].Entry)
	s.True(now.Equal(recs[0].Timestamp.UTC()))
	s.Equal(olderID, recs[1].ID)

	// timed entries are a separate collection
	timed, err := s.client.ListRecords(ctx, "ana", records.ModalityTimed)
	s.Require().NoError(err)
	s.Empty(timed)

	s.Require().NoError(s.client.DeleteRecord(ctx, "ana", records.ModalityCount, olderID))
	recs, err = s.client.ListRecords(ctx, "ana", records.ModalityCount)
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal(newerID, recs[0].ID)

	err = s.client.DeleteRecord(ctx, "ana", records.ModalityCount, olderID)
	var statusErr *client.StatusError
	s.Require().True(errors.As(err, &statusErr))
	s.Equal(http.StatusNotFound, statusErr.StatusCode)

	_, err = s.client.CreateRecord(ctx, records.NewRepsRecord("nobody", 1, 1, now))
	s.Require().True(errors.As(err, &statusErr))
	s.Equal(http.StatusNotFound, statusErr.StatusCode)
}

func (s *IntegrationTestSuite) TestStatsAndOverview() {
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.client.CreateRecord(ctx, records.NewTimesRecord("ben", 95, 80, now))
	s.Require().NoError(err)
	_, err = s.client.CreateRecord(ctx, records.NewTimesRecord("cleo", 120, 60, now))
	s.Require().NoError(err)
	_, err = s.client.CreateRecord(ctx, records.NewTimesRecord("cleo", 100, 50, now.AddDate(0, 0, -9)))
	s.Require().NoError(err)

	userStats, err := s.client.UserStats(ctx, "cleo", records.ModalityTimed, now.Add(time.Minute))
	s.Require().NoError(err)
	s.Len(userStats.Series, 2)
	s.Equal(120, userStats.Totals.Current.First)
	s.Equal(100, userStats.Totals.Previous.First)
	s.InDelta(20.0, userStats.Totals.FirstChange, 0.001)

	overview, err := s.client.Overview(ctx, records.ModalityTimed)
	s.Require().NoError(err)
	s.Empty(overview.Errors)
	s.Len(overview.Users, 3)
	s.Equal(2, overview.Today.ActiveUsers)
	s.Equal(215, overview.Today.TotalFirst)
	s.Require().NotNil(overview.Today.BestFirst)
	s.Equal("Cleo", overview.Today.BestFirst.UserName)
	s.Require().NotNil(overview.Today.BestSecond)
	s.Equal("Ben", overview.Today.BestSecond.UserName)
}

func (s *IntegrationTestSuite) TestMongoRepos() {
	ctx := context.Background()
	mongoDB := s.mongoClient.Database("fittracker_test")

	usersRepo := users.NewMongoRepo(mongoDB)
	s.Require().NoError(usersRepo.Add(ctx, users.User{ID: "zed", Name: "Zed"}))
	s.Require().NoError(usersRepo.Add(ctx, users.User{ID: "amy", Name: "Amy"}))
	s.ErrorIs(usersRepo.Add(ctx, users.User{ID: "amy", Name: "Amy again"}), users.ErrUserExists)

	roster, err := usersRepo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(roster, 2)
	s.Equal("Amy", roster[0].Name)

	recordsRepo := records.NewMongoRepo(mongoDB)
	s.Require().NoError(recordsRepo.EnsureIndexes(ctx))

	now := time.Now().UTC().Truncate(time.Millisecond)
	firstID, err := recordsRepo.Create(ctx, records.NewRepsRecord("amy", 10, 10, now.Add(-time.Hour)))
	s.Require().NoError(err)
	secondID, err := recordsRepo.Create(ctx, records.NewRepsRecord("amy", 12, 11, now))
	s.Require().NoError(err)
	_, err = recordsRepo.Create(ctx, records.NewTimesRecord("amy", 60, 45, now))
	s.Require().NoError(err)

	recs, err := recordsRepo.List(ctx, "amy", records.ModalityCount)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(secondID, recs[0].ID)
	s.Equal(firstID, recs[1].ID)

	s.Require().NoError(recordsRepo.Delete(ctx, "amy", records.ModalityCount, firstID))
	s.ErrorIs(recordsRepo.Delete(ctx, "amy", records.ModalityCount, firstID), records.ErrRecordNotFound)
	s.ErrorIs(recordsRepo.Delete(ctx, "amy", records.ModalityCount, "not-an-object-id"), records.ErrRecordNotFound)

	recs, err = recordsRepo.List(ctx, "amy", records.ModalityCount)
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal(secondID, recs[0].ID)
}

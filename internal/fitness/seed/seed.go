// Package seed fills a development store with a fake roster and a few weeks
// of entries per user.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/users"
)

type UserAdder interface {
	Add(ctx context.Context, user users.User) error
}

type RecordCreator interface {
	Create(ctx context.Context, record records.Record) (string, error)
}

type Params struct {
	Users int
	Days  int
	// EntriesPerDay caps the entries a user logs on an active day.
	EntriesPerDay int
}

type Data struct {
	Users   []users.User
	Records []records.Record
}

// Generate builds users and records ending at now. Users skip some days, so
// the generated history has gaps like a real one.
func Generate(faker *gofakeit.Faker, params Params, now time.Time) Data {
	if params.EntriesPerDay <= 0 {
		params.EntriesPerDay = 1
	}

	var data Data
	for i := 0; i < params.Users; i++ {
		u := users.User{
			ID:   strings.ToLower(fmt.Sprintf("%s-%d", faker.FirstName(), i+1)),
			Name: faker.Name(),
		}
		data.Users = append(data.Users, u)

		// a base level per user, so progress is visible in the charts
		baseSitups := faker.Number(10, 40)
		basePushups := faker.Number(5, 30)
		baseSitupTime := faker.Number(60, 150)
		basePushupTime := faker.Number(45, 120)

		for day := params.Days - 1; day >= 0; day-- {
			if faker.Number(0, 9) < 3 {
				continue
			}
			dayStart := now.AddDate(0, 0, -day).Truncate(time.Hour)
			entries := faker.Number(1, params.EntriesPerDay)
			for e := 0; e < entries; e++ {
				ts := dayStart.Add(-time.Duration(faker.Number(0, 600)) * time.Minute)
				progress := (params.Days - day) / 3
				if faker.Bool() {
					data.Records = append(data.Records, records.NewRepsRecord(
						u.ID,
						baseSitups+progress+faker.Number(0, 5),
						basePushups+progress+faker.Number(0, 5),
						ts,
					))
				} else {
					data.Records = append(data.Records, records.NewTimesRecord(
						u.ID,
						baseSitupTime+faker.Number(0, 30),
						basePushupTime+faker.Number(0, 30),
						ts,
					))
				}
			}
		}
	}

	return data
}

// Store writes the generated data. Users that already exist are kept and
// still get the generated entries.
func Store(ctx context.Context, userAdder UserAdder, recordCreator RecordCreator, data Data) (int, error) {
	for _, u := range data.Users {
		if err := userAdder.Add(ctx, u); err != nil {
			if !errors.Is(err, users.ErrUserExists) {
				return 0, fmt.Errorf("add user %s: %w", u.ID, err)
			}
			log.Debugf("user [%s] exists", u.ID)
		}
	}

	created := 0
	for _, r := range data.Records {
		if _, err := recordCreator.Create(ctx, r); err != nil {
			return created, fmt.Errorf("create record for %s: %w", r.UserID, err)
		}
		created++
	}

	return created, nil
}

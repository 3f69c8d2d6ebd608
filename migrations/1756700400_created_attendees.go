package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		userTickets, err := app.FindCollectionByNameOrId("user_tickets")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("attendees")

		collection.Fields.Add(
			&core.RelationField{Name: "user_ticket", Required: true, CollectionId: userTickets.Id, MaxSelect: 1},
			&core.TextField{Name: "organization"},
			&core.TextField{Name: "role_title"},
			&core.TextField{Name: "country"},
			&core.TextField{Name: "city"},
			&core.TextField{Name: "dietary"},
			&core.SelectField{
				Name:      "tshirt_size",
				MaxSelect: 1,
				Values:    []string{"S", "M", "L", "XL", "XXL"},
			},
			&core.TextField{Name: "phone"},
			&core.TextField{Name: "verification_token", Hidden: true},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// one profile per issued ticket
		collection.AddIndex("idx_attendees_user_ticket", true, "user_ticket", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("attendees")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}

package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		orders, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("user_tickets")

		collection.Fields.Add(
			&core.RelationField{Name: "order", Required: true, CollectionId: orders.Id, MaxSelect: 1},
			&core.TextField{Name: "ticket_number", Required: true},
			&core.TextField{Name: "qr_code", Max: 100000},
			&core.TextField{Name: "attendee_name"},
			&core.EmailField{Name: "attendee_email"},
			&core.BoolField{Name: "checked_in"},
			&core.DateField{Name: "checked_in_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_user_tickets_number", true, "ticket_number", "")
		collection.AddIndex("idx_user_tickets_order", false, "`order`", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("user_tickets")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}

package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		ticketTypes, err := app.FindCollectionByNameOrId("ticket_types")
		if err != nil {
			return err
		}
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("orders")

		collection.Fields.Add(
			&core.RelationField{Name: "ticket_type", Required: true, CollectionId: ticketTypes.Id, MaxSelect: 1},
			&core.NumberField{Name: "quantity", Required: true, Min: types.Pointer(1.0), OnlyInt: true},
			&core.NumberField{Name: "subtotal", Min: types.Pointer(0.0)},
			&core.NumberField{Name: "total_amount", Required: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "currency"},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"pending", "paid", "failed", "cancelled", "refunded"},
			},
			&core.TextField{Name: "reference", Required: true},
			&core.TextField{Name: "customer_name"},
			&core.EmailField{Name: "customer_email", Required: true},
			&core.TextField{Name: "customer_phone"},
			&core.RelationField{Name: "user", CollectionId: users.Id, MaxSelect: 1},
			&core.JSONField{Name: "gateway_payload", MaxSize: 100000},
			&core.DateField{Name: "paid_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// reference is the correlation key with the gateway
		collection.AddIndex("idx_orders_reference", true, "reference", "")
		collection.AddIndex("idx_orders_status", false, "status", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}

package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewSQLiteDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func TestGormSettingRepository_FindByKey_Query(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}),
		&gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	repo := NewGormSettingRepository(gormDB)

	tenantID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "value"}).
		AddRow(uuid.New(), tenantID, "catalogsettings.defaultpagesize", "12")
	mock.ExpectQuery(`SELECT \* FROM "settings" WHERE name = \$1 AND tenant_id = \$2 ORDER BY .* LIMIT .*`).
		WithArgs("catalogsettings.defaultpagesize", tenantID, 1).
		WillReturnRows(rows)

	setting, err := repo.FindByKey(context.Background(), tenantID, "  CatalogSettings.DefaultPageSize ")
	require.NoError(t, err)
	assert.Equal(t, "12", setting.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSettingRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSettingRepository(setupTestDB(t))
	storeID := uuid.New()

	for _, s := range []struct {
		tenant     uuid.UUID
		name, text string
	}{
		{uuid.Nil, "catalogsettings.defaultpagesize", "6"},
		{storeID, "catalogsettings.defaultpagesize", "12"},
		{storeID, "catalogsettings.shownew", "true"},
		{storeID, "ordersettings.minordertotal", "10"},
	} {
		setting, err := configuration.NewSetting(s.tenant, s.name, s.text)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, setting))
	}

	t.Run("finds store specific row", func(t *testing.T) {
		s, err := repo.FindByKey(ctx, storeID, "CatalogSettings.DefaultPageSize")
		require.NoError(t, err)
		assert.Equal(t, "12", s.Value)
	})

	t.Run("missing key is not found", func(t *testing.T) {
		_, err := repo.FindByKey(ctx, storeID, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("prefix spans stores", func(t *testing.T) {
		settings, err := repo.FindByPrefix(ctx, "catalogsettings.")
		require.NoError(t, err)
		assert.Len(t, settings, 3)
	})

	t.Run("delete by prefix is scoped to the store", func(t *testing.T) {
		n, err := repo.DeleteByPrefix(ctx, storeID, "catalogsettings.")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestGormProductRepository_Search(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	categories := NewGormCategoryRepository(db)
	storeID := uuid.New()

	books, err := catalog.NewCategory(storeID, "Books")
	require.NoError(t, err)
	fiction, err := catalog.NewChildCategory(storeID, "Fiction", books)
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, books))
	require.NoError(t, categories.Save(ctx, fiction))

	newProduct := func(name, sku string, price int64) *catalog.Product {
		p, err := catalog.NewProduct(storeID, name, sku, decimal.NewFromInt(price))
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, p))
		return p
	}
	novel := newProduct("Space Novel", "BK-1", 15)
	atlas := newProduct("World Atlas", "BK-2", 40)
	newProduct("Desk Lamp", "LMP-1", 25)

	require.NoError(t, products.SaveProductCategory(ctx, catalog.NewProductCategory(novel.ID, fiction.ID, true, 1)))
	require.NoError(t, products.SaveProductCategory(ctx, catalog.NewProductCategory(atlas.ID, books.ID, false, 2)))

	t.Run("keywords", func(t *testing.T) {
		found, total, err := products.Search(ctx, catalog.ProductSearchCriteria{TenantID: storeID, Keywords: "atlas", PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, found, 1)
		assert.Equal(t, atlas.ID, found[0].ID)
	})

	t.Run("category with descendants", func(t *testing.T) {
		ids, err := categories.FindDescendantIDs(ctx, storeID, books.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{fiction.ID}, ids)

		_, total, err := products.Search(ctx, catalog.ProductSearchCriteria{
			TenantID:    storeID,
			CategoryIDs: append(ids, books.ID),
			PageSize:    10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("featured only", func(t *testing.T) {
		found, _, err := products.Search(ctx, catalog.ProductSearchCriteria{
			TenantID:     storeID,
			CategoryIDs:  []uuid.UUID{books.ID, fiction.ID},
			FeaturedOnly: true,
			PageSize:     10,
		})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, novel.ID, found[0].ID)
	})

	t.Run("price sort and paging", func(t *testing.T) {
		found, total, err := products.Search(ctx, catalog.ProductSearchCriteria{
			TenantID: storeID,
			OrderBy:  catalog.ProductSortPriceDesc,
			Page:     1,
			PageSize: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, found, 2)
		assert.Equal(t, "World Atlas", found[0].Name)
		assert.Equal(t, "Desk Lamp", found[1].Name)
	})

	t.Run("other store sees nothing", func(t *testing.T) {
		_, total, err := products.Search(ctx, catalog.ProductSearchCriteria{TenantID: uuid.New(), PageSize: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestGormProductRepository_SearchWildcardsAreLiteral(t *testing.T) {
	ctx := context.Background()
	products := NewGormProductRepository(setupTestDB(t))
	storeID := uuid.New()

	byName := map[string]*catalog.Product{}
	for _, item := range []struct{ name, sku string }{
		{"Sale 50% off", "S-1"},
		{"Sale 500 off", "S-2"},
		{"Part A_B", "P_1"},
		{"Part AXB", "P-2"},
	} {
		p, err := catalog.NewProduct(storeID, item.name, item.sku, decimal.NewFromInt(5))
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, p))
		byName[item.name] = p
	}

	for _, tc := range []struct {
		keywords string
		want     string
	}{
		{"50%", "Sale 50% off"},
		{"a_b", "Part A_B"},
		{"p_1", "Part A_B"},
	} {
		t.Run(tc.keywords, func(t *testing.T) {
			found, total, err := products.Search(ctx, catalog.ProductSearchCriteria{TenantID: storeID, Keywords: tc.keywords, PageSize: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
			require.Len(t, found, 1)
			assert.Equal(t, byName[tc.want].ID, found[0].ID)
		})
	}
}

func TestGormProductRepository_StaleCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))
	storeID := uuid.New()

	p, err := catalog.NewProduct(storeID, "Kettle", "KT-1", decimal.NewFromInt(25))
	require.NoError(t, err)
	require.NoError(t, p.SetInventory(catalog.ManageInventoryStock, 10, 1, 100))
	require.NoError(t, repo.Save(ctx, p))

	load := func() *catalog.Product {
		loaded, err := repo.FindByIDForTenant(ctx, storeID, p.ID)
		require.NoError(t, err)
		return loaded
	}

	t.Run("stock adjustments from stale copies both apply", func(t *testing.T) {
		first, second := load(), load()
		require.NoError(t, repo.AdjustStock(ctx, first, -3))
		require.NoError(t, repo.AdjustStock(ctx, second, -3))

		assert.Equal(t, 4, second.StockQuantity)
		assert.Equal(t, 4, load().StockQuantity)
	})

	t.Run("save of a stale copy conflicts", func(t *testing.T) {
		first, second := load(), load()
		require.NoError(t, first.SetPrices(decimal.NewFromInt(30), decimal.Zero, decimal.Zero))
		require.NoError(t, repo.Save(ctx, first))

		require.NoError(t, second.SetPrices(decimal.NewFromInt(20), decimal.Zero, decimal.Zero))
		err := repo.Save(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		stored := load()
		assert.True(t, stored.Price.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, first.Version, stored.Version)
	})

	t.Run("save after a stock change needs a fresh copy", func(t *testing.T) {
		stale := load()
		require.NoError(t, repo.AdjustStock(ctx, load(), 5))

		stale.SetPublished(false)
		assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
		assert.Equal(t, 9, load().StockQuantity)
	})

	t.Run("adjusting another store's product is not found", func(t *testing.T) {
		other := load()
		other.TenantID = uuid.New()
		assert.ErrorIs(t, repo.AdjustStock(ctx, other, 1), shared.ErrNotFound)
	})
}

func TestDatabase_InTx(t *testing.T) {
	ctx := context.Background()
	database, err := NewSQLiteDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	products := NewGormProductRepository(database.DB)
	carts := NewGormCartRepository(database.DB)
	storeID, customerID := uuid.New(), uuid.New()

	p, err := catalog.NewProduct(storeID, "Kettle", "KT-1", decimal.NewFromInt(25))
	require.NoError(t, err)
	require.NoError(t, p.SetInventory(catalog.ManageInventoryStock, 10, 1, 100))
	require.NoError(t, products.Save(ctx, p))
	item, err := cart.NewItem(storeID, customerID, p.ID, cart.TypeShoppingCart, 2)
	require.NoError(t, err)
	require.NoError(t, carts.Save(ctx, item))

	stock := func() int {
		loaded, err := products.FindByIDForTenant(ctx, storeID, p.ID)
		require.NoError(t, err)
		return loaded.StockQuantity
	}
	lines := func() int {
		items, err := carts.FindForCustomer(ctx, &storeID, customerID, cart.TypeShoppingCart)
		require.NoError(t, err)
		return len(items)
	}

	t.Run("failure rolls every write back", func(t *testing.T) {
		err := database.InTx(ctx, func(ctx context.Context) error {
			require.NoError(t, products.AdjustStock(ctx, p, -2))
			require.NoError(t, carts.DeleteForCustomer(ctx, &storeID, customerID, cart.TypeShoppingCart))
			return errors.New("payment record failed")
		})
		require.Error(t, err)
		assert.Equal(t, 10, stock())
		assert.Equal(t, 1, lines())
	})

	t.Run("success commits every write", func(t *testing.T) {
		err := database.InTx(ctx, func(ctx context.Context) error {
			if err := products.AdjustStock(ctx, p, -2); err != nil {
				return err
			}
			// nested units join the outer transaction
			return database.InTx(ctx, func(ctx context.Context) error {
				return carts.DeleteForCustomer(ctx, &storeID, customerID, cart.TypeShoppingCart)
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 8, stock())
		assert.Zero(t, lines())
	})
}

func TestGormCartRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCartRepository(setupTestDB(t))
	storeA, storeB, customerID := uuid.New(), uuid.New(), uuid.New()

	add := func(store uuid.UUID, cartType cart.Type) {
		item, err := cart.NewItem(store, customerID, uuid.New(), cartType, 1)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, item))
	}
	add(storeA, cart.TypeShoppingCart)
	add(storeB, cart.TypeShoppingCart)
	add(storeA, cart.TypeWishlist)

	items, err := repo.FindForCustomer(ctx, &storeA, customerID, cart.TypeShoppingCart)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = repo.FindForCustomer(ctx, nil, customerID, cart.TypeShoppingCart)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.NoError(t, repo.DeleteForCustomer(ctx, &storeA, customerID, cart.TypeShoppingCart))
	count, err := repo.CountForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	add(storeA, cart.TypeShoppingCart)
	require.NoError(t, repo.DeleteForCustomer(ctx, nil, customerID, cart.TypeShoppingCart))
	items, err = repo.FindForCustomer(ctx, nil, customerID, cart.TypeShoppingCart)
	require.NoError(t, err)
	assert.Empty(t, items)
	count, err = repo.CountForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "wishlist line stays")
}

func TestGormOrderRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))
	storeID, customerID, countryID := uuid.New(), uuid.New(), uuid.New()

	address := customer.Address{FirstName: "Ada", LastName: "Lovelace", Address1: "1 Loop", City: "London", CountryID: &countryID}
	o, err := order.NewOrder(storeID, customerID, address, address, "USD", decimal.NewFromInt(1),
		order.Totals{Total: decimal.NewFromInt(30)})
	require.NoError(t, err)
	item, err := order.NewItem(uuid.New(), "Space Novel", "BK-1", 2,
		decimal.NewFromInt(15), decimal.NewFromInt(15), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	o.AddItem(item)
	o.AddNote("Order placed", false)

	require.NoError(t, repo.Save(ctx, o))

	loaded, err := repo.FindByIDForTenant(ctx, storeID, o.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "BK-1", loaded.Items[0].Sku)
	assert.Len(t, loaded.Notes, 1)
	assert.True(t, loaded.Totals.Total.Equal(decimal.NewFromInt(30)))

	byGUID, err := repo.FindByGUID(ctx, o.OrderGUID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byGUID.ID)

	orders, total, err := repo.Search(ctx, storeID, order.SearchFilter{CustomerID: &customerID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, orders, 1)

	_, err = repo.FindByIDForTenant(ctx, uuid.New(), o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPollRepository_RecordVote(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPollRepository(setupTestDB(t))
	storeID, customerID := uuid.New(), uuid.New()

	poll, err := content.NewPoll(storeID, uuid.New(), "Favourite genre?")
	require.NoError(t, err)
	answer, err := poll.AddAnswer("Science fiction", 1)
	require.NoError(t, err)
	_, err = poll.AddAnswer("Poetry", 2)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, poll))

	vote := func() error {
		return repo.RecordVote(ctx, &content.PollVotingRecord{
			BaseEntity:   shared.NewBaseEntity(),
			PollID:       poll.ID,
			PollAnswerID: answer.ID,
			CustomerID:   customerID,
		})
	}

	require.NoError(t, vote())
	assert.ErrorIs(t, vote(), shared.ErrAlreadyExists)

	voted, err := repo.AlreadyVoted(ctx, poll.ID, customerID)
	require.NoError(t, err)
	assert.True(t, voted)

	loaded, err := repo.FindByIDForTenant(ctx, storeID, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.TotalVotes())
	assert.Equal(t, 1, loaded.FindAnswer(answer.ID).NumberOfVotes)
}

func TestGormNewsLetterSubscriptionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormNewsLetterSubscriptionRepository(setupTestDB(t))
	storeID := uuid.New()

	sub, err := content.NewNewsLetterSubscription(storeID, "Reader@Example.com", true)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, sub))

	found, err := repo.FindByEmail(ctx, storeID, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, found.ID)

	byGUID, err := repo.FindByGUID(ctx, sub.NewsLetterSubscriptionGUID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, byGUID.ID)

	_, err = repo.FindByEmail(ctx, uuid.New(), "reader@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, sub.ID))
	assert.ErrorIs(t, repo.Delete(ctx, sub.ID), shared.ErrNotFound)
}

func TestGormResourceRepository_SaveAllUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewGormResourceRepository(setupTestDB(t))
	languageID := uuid.New()

	first, err := localization.NewLocaleStringResource(languageID, "Cart.Empty", "Your cart is empty")
	require.NoError(t, err)
	require.NoError(t, repo.SaveAll(ctx, []localization.LocaleStringResource{*first}))

	replacement, err := localization.NewLocaleStringResource(languageID, "cart.empty", "Nothing here yet")
	require.NoError(t, err)
	extra, err := localization.NewLocaleStringResource(languageID, "Cart.Checkout", "Checkout")
	require.NoError(t, err)
	require.NoError(t, repo.SaveAll(ctx, []localization.LocaleStringResource{*replacement, *extra}))

	all, err := repo.FindAllByLanguage(ctx, languageID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	res, err := repo.FindByName(ctx, languageID, "CART.EMPTY")
	require.NoError(t, err)
	assert.Equal(t, "Nothing here yet", res.ResourceValue)
	assert.Equal(t, first.ID, res.ID)
}

func TestGormCustomerRepository_DeleteGuests(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	customers := NewGormCustomerRepository(db)
	roles := NewGormCustomerRoleRepository(db)
	carts := NewGormCartRepository(db)
	storeID := uuid.New()

	guestRole := customer.NewSystemRole(customer.RoleGuests)
	require.NoError(t, roles.Save(ctx, guestRole))

	old := time.Now().UTC().Add(-48 * time.Hour)
	newGuest := func(createdAt time.Time) *customer.Customer {
		c := customer.NewGuestCustomer(storeID, guestRole)
		c.CreatedAt = createdAt
		require.NoError(t, customers.Save(ctx, c))
		return c
	}
	stale := newGuest(old)
	withCart := newGuest(old)
	withOrder := newGuest(old)
	withComment := newGuest(old)
	fresh := newGuest(time.Now().UTC())

	item, err := cart.NewItem(storeID, withCart.ID, uuid.New(), cart.TypeShoppingCart, 1)
	require.NoError(t, err)
	require.NoError(t, carts.Save(ctx, item))

	countryID := uuid.New()
	address := customer.Address{FirstName: "Ada", LastName: "Lovelace", Address1: "1 Loop", City: "London", CountryID: &countryID}
	o, err := order.NewOrder(storeID, withOrder.ID, address, address, "USD", decimal.NewFromInt(1),
		order.Totals{Total: decimal.NewFromInt(10)})
	require.NoError(t, err)
	require.NoError(t, NewGormOrderRepository(db).Save(ctx, o))

	blogs := NewGormBlogRepository(db)
	post, err := content.NewBlogPost(storeID, uuid.New(), "Launch", "We are open")
	require.NoError(t, err)
	require.NoError(t, blogs.Save(ctx, post))
	comment, err := post.AddComment(withComment.ID, "Nice post", true)
	require.NoError(t, err)
	require.NoError(t, blogs.SaveComment(ctx, comment))

	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	deleted, err := customers.DeleteGuests(ctx, cutoff, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = customers.FindByIDForTenant(ctx, storeID, stale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = customers.FindByIDForTenant(ctx, storeID, withCart.ID)
	assert.NoError(t, err)
	_, err = customers.FindByIDForTenant(ctx, storeID, withOrder.ID)
	assert.NoError(t, err, "guest with an order is kept")
	_, err = customers.FindByIDForTenant(ctx, storeID, withComment.ID)
	assert.NoError(t, err, "guest with a comment is kept")

	deleted, err = customers.DeleteGuests(ctx, cutoff, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := carts.CountForCustomer(ctx, withCart.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	loaded, err := customers.FindByIDForTenant(ctx, storeID, fresh.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsInRole(customer.RoleGuests))
}

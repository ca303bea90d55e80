package repositories_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dukaan/app/models"
	"dukaan/app/repositories"
	"dukaan/pkg/httperr"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A second pooled connection to :memory: would see its own empty
	// database, so keep everything on one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user, err := repositories.NewUserRepository(db).Create(name, email, "hash")
	require.NoError(t, err)
	return user
}

func TestUserCreate(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewUserRepository(db)

	user, err := repo.Create("Asha", "asha@example.com", "bcrypt-hash")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "asha@example.com", user.Email)

	found, err := repo.FindByEmail("asha@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)
	require.Equal(t, "bcrypt-hash", found.Password)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewUserRepository(db)

	_, err := repo.Create("Asha", "asha@example.com", "hash")
	require.NoError(t, err)

	_, err = repo.Create("Imposter", "asha@example.com", "hash2")
	require.Error(t, err)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 400, appErr.Status)
	require.Equal(t, "Email already registered", appErr.Message)

	n, err := repo.Count()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestUserLookupsNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewUserRepository(db)

	_, err := repo.FindByID(999)
	require.True(t, errors.Is(err, httperr.UserNotFound()))

	_, err = repo.FindByEmail("ghost@example.com")
	require.True(t, errors.Is(err, httperr.UserNotFound()))

	_, _, err = repo.Orders(999)
	require.True(t, errors.Is(err, httperr.UserNotFound()))
}

func TestUserOrders(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "Asha", "asha@example.com")
	other := seedUser(t, db, "Ravi", "ravi@example.com")

	orderRepo := repositories.NewOrderRepository(db)
	_, err := orderRepo.Create("Shoes", user.ID)
	require.NoError(t, err)
	_, err = orderRepo.Create("Hat", user.ID)
	require.NoError(t, err)
	_, err = orderRepo.Create("Belt", other.ID)
	require.NoError(t, err)

	got, orders, err := repositories.NewUserRepository(db).Orders(user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Len(t, orders, 2)
	for _, o := range orders {
		require.Equal(t, user.ID, o.UserID)
	}
}

func TestCreateWithOrdersCommits(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewUserRepository(db)

	user, err := repo.CreateWithOrders("Asha", "asha@example.com", []string{"Shoes", "Hat"})
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	_, orders, err := repo.Orders(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
}

func TestCreateWithOrdersRollsBackAsOne(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewUserRepository(db)
	seedUser(t, db, "Asha", "asha@example.com")

	// The duplicate email fails inside the transaction, after nothing or
	// after some inserts; either way no partial rows may survive.
	_, err := repo.CreateWithOrders("Imposter", "asha@example.com", []string{"Shoes", "Hat"})
	require.Error(t, err)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Transaction failed", appErr.Message)
	require.Equal(t, 400, appErr.Status)

	users, err := repo.Count()
	require.NoError(t, err)
	require.EqualValues(t, 1, users)

	orders, err := repositories.NewOrderRepository(db).Count()
	require.NoError(t, err)
	require.EqualValues(t, 0, orders)
}

func TestOrderCreateAndFind(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "Asha", "asha@example.com")
	repo := repositories.NewOrderRepository(db)

	order, err := repo.Create("Shoes", user.ID)
	require.NoError(t, err)
	require.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, "Shoes", found.Item)
	require.Equal(t, user.ID, found.UserID)

	_, err = repo.FindByID(order.ID + 100)
	require.True(t, errors.Is(err, httperr.OrderNotFound()))
}

func TestOrderListSortedByItem(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "Asha", "asha@example.com")
	repo := repositories.NewOrderRepository(db)

	for _, item := range []string{"Pizza", "Apple", "Mango"} {
		_, err := repo.Create(item, user.ID)
		require.NoError(t, err)
	}

	orders, err := repo.All()
	require.NoError(t, err)
	require.Len(t, orders, 3)

	items := make([]string, len(orders))
	for i, o := range orders {
		items[i] = o.Item
	}
	require.Equal(t, []string{"Apple", "Mango", "Pizza"}, items)
}

func TestAttachProducts(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "Asha", "asha@example.com")
	repo := repositories.NewOrderRepository(db)

	order, err := repo.AttachProducts(user.ID, []string{"Pizza", "Burger"})
	require.NoError(t, err)
	require.Equal(t, "Cloths Order", order.Item)
	require.Equal(t, user.ID, order.UserID)

	_, orders, err := repo.ForUserWithProducts(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Products, 2)
}

func TestAttachProductsRepeatedNameLinksOnce(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "Asha", "asha@example.com")
	repo := repositories.NewOrderRepository(db)

	_, err := repo.AttachProducts(user.ID, []string{"Pizza", "Pizza", "Pizza"})
	require.NoError(t, err)

	var productCount int64
	require.NoError(t, db.Model(&models.Product{}).Count(&productCount).Error)
	require.EqualValues(t, 1, productCount)

	_, orders, err := repo.ForUserWithProducts(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Products, 1)
}

func TestAttachProductsReusesExistingProducts(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "Asha", "asha@example.com")
	repo := repositories.NewOrderRepository(db)

	first, err := repo.AttachProducts(user.ID, []string{"Pizza"})
	require.NoError(t, err)
	second, err := repo.AttachProducts(user.ID, []string{"Pizza", "Burger"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	// Two orders, but "Pizza" exists only once in the catalogue.
	var productCount int64
	require.NoError(t, db.Model(&models.Product{}).Count(&productCount).Error)
	require.EqualValues(t, 2, productCount)

	_, orders, err := repo.ForUserWithProducts(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
}

func TestAttachProductsUnknownUser(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewOrderRepository(db)

	_, err := repo.AttachProducts(999, []string{"Pizza"})
	require.True(t, errors.Is(err, httperr.UserNotFound()))

	// The aborted transaction must leave no order or product behind.
	var orderCount, productCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.Product{}).Count(&productCount).Error)
	require.Zero(t, orderCount)
	require.Zero(t, productCount)
}

func TestForUserWithProductsUnknownUser(t *testing.T) {
	db := openTestDB(t)

	_, _, err := repositories.NewOrderRepository(db).ForUserWithProducts(42)
	require.True(t, errors.Is(err, httperr.UserNotFound()))
}

// openFileDB opens a file-backed database so a second handle can act as a
// competing writer; :memory: cannot be shared across connections.
func openFileDB(t *testing.T, path string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=500"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

// rivalProductInsert arranges for insert to run exactly once, right after
// a product lookup comes back empty and before the following insert. That
// is the window in which a competing writer can claim the name.
func rivalProductInsert(t *testing.T, db *gorm.DB, insert func(tx *gorm.DB)) {
	t.Helper()

	fired := false
	err := db.Callback().Query().After("gorm:query").Register("rival_product_insert", func(tx *gorm.DB) {
		if fired || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "products" {
			return
		}
		if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return
		}
		fired = true
		insert(tx)
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Callback().Query().Remove("rival_product_insert"))
	})
}

func TestFindOrCreateLosesInsertRace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contend.db")
	db := openFileDB(t, path)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}))
	rivalDB := openFileDB(t, path)

	var rivalID uint
	rivalProductInsert(t, db, func(*gorm.DB) {
		rival := models.Product{Name: "Pizza"}
		require.NoError(t, rivalDB.Create(&rival).Error)
		rivalID = rival.ID
	})

	// The loser must come back with the winner's row, not the violation.
	got, err := repositories.NewProductRepository(db).FindOrCreate("Pizza")
	require.NoError(t, err)
	require.Equal(t, rivalID, got.ID)

	var n int64
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestAttachProductsRecoversFromLostInsertRace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contend.db")
	db := openFileDB(t, path)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}))
	user := seedUser(t, db, "Asha", "asha@example.com")

	// The rival row lands on the transaction's own connection, ahead of
	// the insert's savepoint, which is how a row committed by a competing
	// writer looks to the insert.
	var rivalID uint
	rivalProductInsert(t, db, func(tx *gorm.DB) {
		sess := tx.Session(&gorm.Session{NewDB: true})
		sess.Error = nil // the lookup's not-found state must not bleed into this insert
		rival := models.Product{Name: "Pizza"}
		require.NoError(t, sess.Create(&rival).Error)
		rivalID = rival.ID
	})

	repo := repositories.NewOrderRepository(db)
	order, err := repo.AttachProducts(user.ID, []string{"Pizza"})
	require.NoError(t, err)

	// The violation must not poison the enclosing transaction: the order
	// commits and links to the winner's row.
	_, orders, err := repo.ForUserWithProducts(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, order.ID, orders[0].ID)
	require.Len(t, orders[0].Products, 1)
	require.Equal(t, rivalID, orders[0].Products[0].ID)

	var n int64
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestProductFindOrCreate(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewProductRepository(db)

	created, err := repo.FindOrCreate("Pizza")
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	again, err := repo.FindOrCreate("Pizza")
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)

	var n int64
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestProductFindByName(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewProductRepository(db)

	_, err := repo.FindByName("Pizza")
	require.True(t, errors.Is(err, httperr.ProductNotFound()))

	created, err := repo.FindOrCreate("Pizza")
	require.NoError(t, err)

	found, err := repo.FindByName("Pizza")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
}

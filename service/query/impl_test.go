package query

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/database/mongoclient"
	"github.com/mochi-xyz/market/domain"
)

var (
	mockCTX = ctx.Background()
)

const (
	mockTable = domain.Table("query_test")
	dbName    = "testdb"
)

type dummy struct {
	Dummy  string `bson:"dummy"`
	Update string `bson:"updatekey"`
}

type querySuite struct {
	suite.Suite
	im *impl
}

func (q *querySuite) SetupTest() {
	q.im = New(mongoclient.MustConnectMongoClient(os.Getenv("MONGO_URI"), "admin", dbName, false, true, 1), false, nil).(*impl)
	q.Require().NoError(q.im.coll(mockTable).Drop(mockCTX))
}

func (q *querySuite) TestInsertAndFindOne() {
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"a", "1"}))

	res := dummy{}
	q.Require().NoError(q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "a"}, &res))
	q.Equal(dummy{"a", "1"}, res)

	q.Equal(ErrNotFound, q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "b"}, &res))
}

func (q *querySuite) TestInsertManyDuplicateKey() {
	q.Require().NoError(q.im.EnsureIndexes(mockCTX, mockTable, []Index{{Keys: []string{"dummy"}, Unique: true}}))
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"a", "1"}))

	err := q.im.InsertMany(mockCTX, mockTable, []interface{}{dummy{"a", "2"}, dummy{"b", "2"}, dummy{"c", "2"}})
	q.Equal(ErrDuplicateKey, err)

	n, err := q.im.Count(mockCTX, mockTable, bson.M{})
	q.Require().NoError(err)
	q.Equal(3, n)

	q.Equal(ErrDuplicateKey, q.im.Insert(mockCTX, mockTable, dummy{"b", "3"}))
	q.NoError(q.im.InsertMany(mockCTX, mockTable, nil))
}

func (q *querySuite) TestUpsert() {
	q.Require().NoError(q.im.Upsert(mockCTX, mockTable, bson.M{"dummy": "a"}, dummy{"a", "1"}))
	q.Require().NoError(q.im.Upsert(mockCTX, mockTable, bson.M{"dummy": "a"}, dummy{"a", "2"}))

	res := dummy{}
	q.Require().NoError(q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "a"}, &res))
	q.Equal("2", res.Update)
	n, err := q.im.Count(mockCTX, mockTable, bson.M{"dummy": "a"})
	q.Require().NoError(err)
	q.Equal(1, n)
}

func (q *querySuite) TestSearchSortsAndPages() {
	docs := []interface{}{dummy{"a", "2"}, dummy{"b", "1"}, dummy{"c", "2"}, dummy{"d", "1"}}
	q.Require().NoError(q.im.InsertMany(mockCTX, mockTable, docs))

	res := []dummy{}
	q.Require().NoError(q.im.Search(mockCTX, mockTable, 1, 2, []string{"updatekey", "-dummy"}, bson.M{}, &res))
	q.Equal([]dummy{{"b", "1"}, {"c", "2"}}, res)

	res = []dummy{}
	q.Require().NoError(q.im.Search(mockCTX, mockTable, 0, 0, []string{"dummy"}, bson.M{"updatekey": "2"}, &res))
	q.Equal([]dummy{{"a", "2"}, {"c", "2"}}, res)
}

func (q *querySuite) TestRemoveAll() {
	q.Require().NoError(q.im.InsertMany(mockCTX, mockTable, []interface{}{dummy{"a", "1"}, dummy{"b", "1"}, dummy{"c", "2"}}))

	n, err := q.im.RemoveAll(mockCTX, mockTable, bson.M{"updatekey": "1"})
	q.Require().NoError(err)
	q.Equal(int64(2), n)

	cnt, err := q.im.Count(mockCTX, mockTable, bson.M{})
	q.Require().NoError(err)
	q.Equal(1, cnt)
}

func TestSortOption(t *testing.T) {
	require.Equal(t, bson.D{{Key: "time", Value: -1}, {Key: "_id", Value: 1}}, sortOption("-time", "", "_id"))
	require.Equal(t, bson.D{}, sortOption())
}

func TestQuerySuite(t *testing.T) {
	if os.Getenv("MONGO_URI") == "" {
		t.Skip("MONGO_URI not set")
	}
	suite.Run(t, new(querySuite))
}

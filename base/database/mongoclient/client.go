package mongoclient

import (
	"context"
	"crypto/tls"
	"runtime"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/mochi-xyz/market/base/log"
)

const (
	socketTimeout  = 60 * time.Second
	connectTimeout = 10 * time.Second
)

// Client wraps mongo.Client with the database it serves.
type Client struct {
	DbName string
	*mongo.Client
}

// MustConnectMongoClient panics if the connection fails.
func MustConnectMongoClient(uri, authDBName, dbName string, ssl, setSafe bool, poolSizeMultiplier float64) *Client {
	cli, err := ConnectMongoClient(uri, authDBName, dbName, ssl, setSafe, poolSizeMultiplier)
	if err != nil {
		log.Log().WithFields(log.Fields{"db": dbName, "err": err}).Panic("fail to dial Mongo")
	}
	return cli
}

// ConnectMongoClient connects and pings the primary. The pool spans
// NumCPU*poolSizeMultiplier connections split evenly across hosts.
func ConnectMongoClient(uri, authDBName, dbName string, ssl, setSafe bool, poolSizeMultiplier float64) (*Client, error) {
	connSetting, err := connstring.Parse(uri)
	if err != nil {
		log.Log().WithFields(log.Fields{"db": dbName, "err": err}).Error("fail to parse connstring")
		return nil, err
	}
	logger := log.Log().WithFields(log.Fields{"mongoHosts": connSetting.Hosts, "db": dbName})

	clientOpts := options.Client().ApplyURI(uri).SetSocketTimeout(socketTimeout).SetRetryWrites(true)
	if connSetting.Username != "" && connSetting.AuthSource == "" {
		clientOpts.SetAuth(options.Credential{
			AuthMechanism:           connSetting.AuthMechanism,
			AuthMechanismProperties: connSetting.AuthMechanismProperties,
			Username:                connSetting.Username,
			Password:                connSetting.Password,
			PasswordSet:             connSetting.PasswordSet,
			AuthSource:              authDBName,
		})
	}

	hosts := len(connSetting.Hosts)
	if hosts == 0 {
		hosts = 1
	}
	poolSize := int(float64(runtime.NumCPU()) * poolSizeMultiplier)
	poolSize = (poolSize + hosts - 1) / hosts
	if poolSize < 1 {
		poolSize = 1
	}
	clientOpts.SetMinPoolSize(uint64(poolSize / 4)).SetMaxPoolSize(uint64(poolSize))

	if ssl {
		clientOpts.SetTLSConfig(&tls.Config{})
	}
	if setSafe {
		clientOpts.SetWriteConcern(writeconcern.New(writeconcern.WMajority()))
	}

	c, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(c, clientOpts)
	if err != nil {
		logger.WithField("err", err).Error("fail to connect mongo db")
		return nil, err
	}
	if err := client.Ping(c, readpref.Primary()); err != nil {
		logger.WithField("err", err).Error("fail to ping mongo db")
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.WithField("poolSize", poolSize).Info("mongo connected")
	return &Client{
		Client: client,
		DbName: dbName,
	}, nil
}

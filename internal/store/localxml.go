package store

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// LocalXMLPath is the location of local.xml below a Magento root.
const LocalXMLPath = "app/etc/local.xml"

// LocalXML is the database section of a Magento app/etc/local.xml.
type LocalXML struct {
	TablePrefix string `xml:"global>resources>db>table_prefix"`
	Host        string `xml:"global>resources>default_setup>connection>host"`
	Username    string `xml:"global>resources>default_setup>connection>username"`
	Password    string `xml:"global>resources>default_setup>connection>password"`
	DBName      string `xml:"global>resources>default_setup>connection>dbname"`
}

// ReadLocalXML parses app/etc/local.xml below magentoRoot.
func ReadLocalXML(magentoRoot string) (*LocalXML, error) {
	path := filepath.Join(magentoRoot, LocalXMLPath)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var lx LocalXML
	if err := xml.Unmarshal(data, &lx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	lx.TablePrefix = strings.TrimSpace(lx.TablePrefix)
	lx.Host = strings.TrimSpace(lx.Host)
	lx.Username = strings.TrimSpace(lx.Username)
	lx.DBName = strings.TrimSpace(lx.DBName)

	if lx.Host == "" || lx.DBName == "" {
		return nil, fmt.Errorf("parse %s: missing connection host or dbname", path)
	}
	return &lx, nil
}

// DSN returns a go-sql-driver/mysql data source name for the connection.
// A host starting with '/' is treated as a unix socket.
func (lx *LocalXML) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = lx.Username
	cfg.Passwd = lx.Password
	cfg.DBName = lx.DBName
	cfg.Net = "tcp"
	cfg.Addr = lx.Host
	if strings.HasPrefix(lx.Host, "/") {
		cfg.Net = "unix"
	} else if !strings.Contains(lx.Host, ":") {
		cfg.Addr = lx.Host + ":3306"
	}
	return cfg.FormatDSN()
}

// Config returns the store Config for this local.xml.
func (lx *LocalXML) Config() Config {
	return Config{
		Driver:      MySQL,
		DSN:         lx.DSN(),
		TablePrefix: lx.TablePrefix,
	}
}

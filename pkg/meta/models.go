package meta

import (
	"encoding/json"
	"time"

	"hashvault/pkg/types"

	"gorm.io/datatypes"
)

// Ref 存储分支指针 (例如 "HEAD")
type Ref struct {
	Name string `gorm:"primaryKey;type:varchar(255)"`

	// CommitHash 以 64 位大写 hex 存储 (types.Hash 实现了 Valuer/Scanner)
	CommitHash types.Hash `gorm:"type:char(64);not null"`

	// Version 用于乐观锁 (CAS)，每次更新 +1
	Version int64 `gorm:"default:1"`

	UpdatedAt time.Time
}

// CommitModel 是 core.Commit 在关系型数据库中的投影，用于 tv log 等查询
type CommitModel struct {
	Hash types.Hash `gorm:"primaryKey;type:char(64)"`

	Author    string `gorm:"index;type:varchar(100)"`
	Message   string `gorm:"type:text"`
	Timestamp int64  `gorm:"index"`

	TreeHash types.Hash `gorm:"type:char(64);not null"`

	// Parents 父节点列表 ["HASH1", "HASH2"]
	Parents datatypes.JSON

	// Meta 存储任意非结构化标签
	Meta datatypes.JSON `gorm:"index:idx_commit_meta"`

	CreatedAt time.Time
}

func (CommitModel) TableName() string {
	return "commits"
}

// ParentHashes 解析 Parents 列
func (c *CommitModel) ParentHashes() ([]types.Hash, error) {
	var out []types.Hash
	if len(c.Parents) == 0 {
		return out, nil
	}
	err := json.Unmarshal(c.Parents, &out)
	return out, err
}

// FileIndex 记录 LinearHash -> Merkle Root 的映射，用于秒传
type FileIndex struct {
	LinearHash types.LinearHash `gorm:"primaryKey;type:char(64)"`
	MerkleRoot types.Hash       `gorm:"type:char(64);not null"`
	SizeBytes  int64
	CreatedAt  time.Time
}

func (FileIndex) TableName() string {
	return "file_indices"
}
